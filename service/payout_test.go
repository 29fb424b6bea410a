package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApportion_ExampleSplit(t *testing.T) {
	// Stakes 3, 3, 4 splitting 10: floors are 3, 3, 4 with no leftover.
	shares := Apportion([]int64{3, 3, 4}, 10)
	assert.Equal(t, []int64{3, 3, 4}, shares)
}

func TestApportion_RemainderGoesToLargestFraction(t *testing.T) {
	// Stakes 1, 1, 1 splitting 10: floors 3, 3, 3, one unit left. Equal
	// remainders break toward the earliest stake.
	shares := Apportion([]int64{1, 1, 1}, 10)
	assert.Equal(t, []int64{4, 3, 3}, shares)
}

func TestApportion_UnevenRemainders(t *testing.T) {
	// Stakes 2, 5, 3 splitting 7: exact shares 1.4, 3.5, 2.1, floors sum to
	// 6. The one leftover unit goes to the largest remainder (.5).
	shares := Apportion([]int64{2, 5, 3}, 7)
	assert.Equal(t, []int64{1, 4, 2}, shares)
}

func TestApportion_SumsExactly(t *testing.T) {
	cases := []struct {
		stakes     []int64
		distribute int64
	}{
		{[]int64{1}, 99},
		{[]int64{7, 13, 29, 51}, 1000},
		{[]int64{100, 100, 100}, 1},
		{[]int64{1, 2, 3, 4, 5, 6, 7}, 12345},
		{[]int64{50, 200, 125, 125}, 375},
	}

	for _, tc := range cases {
		shares := Apportion(tc.stakes, tc.distribute)
		var sum int64
		for _, s := range shares {
			sum += s
		}
		assert.Equal(t, tc.distribute, sum, "stakes %v distribute %d", tc.stakes, tc.distribute)
	}
}

func TestApportion_ZeroDistribute(t *testing.T) {
	shares := Apportion([]int64{10, 20}, 0)
	assert.Equal(t, []int64{0, 0}, shares)
}

func TestApportion_Empty(t *testing.T) {
	shares := Apportion(nil, 100)
	assert.Empty(t, shares)
}

func TestApportion_ProportionalOrdering(t *testing.T) {
	// A strictly larger stake never receives a smaller share.
	shares := Apportion([]int64{10, 500, 90, 400}, 777)
	assert.True(t, shares[1] >= shares[3])
	assert.True(t, shares[3] >= shares[2])
	assert.True(t, shares[2] >= shares[0])
}
