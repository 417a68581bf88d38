package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrontierIsFIFO(t *testing.T) {
	f := NewFrontier()
	f.Seed([]string{"https://a.example/wiki/1", "https://a.example/wiki/2"})
	f.Push(Task{URL: "https://a.example/wiki/3", Depth: 1})

	var got []Task
	for {
		task, ok := f.Pop()
		if !ok {
			break
		}
		got = append(got, task)
		f.Done()
	}
	require.Equal(t, []Task{
		{URL: "https://a.example/wiki/1", Depth: 0},
		{URL: "https://a.example/wiki/2", Depth: 0},
		{URL: "https://a.example/wiki/3", Depth: 1},
	}, got)
	require.True(t, f.Exhausted())
}

func TestFrontierEmptyIsNotExhaustedWhileInFlight(t *testing.T) {
	f := NewFrontier()
	f.Seed([]string{"https://a.example/wiki/1"})

	_, ok := f.Pop()
	require.True(t, ok)
	_, ok = f.Pop()
	require.False(t, ok, "frontier should be empty right now")
	require.False(t, f.Exhausted(), "a worker still holds work that may push links")
	require.Equal(t, 1, f.InFlight())

	f.Push(Task{URL: "https://a.example/wiki/2", Depth: 1})
	f.Done()
	require.False(t, f.Exhausted())
	require.Equal(t, 1, f.Len())

	_, ok = f.Pop()
	require.True(t, ok)
	f.Done()
	require.True(t, f.Exhausted())
}

func TestFrontierCompactionKeepsOrder(t *testing.T) {
	f := NewFrontier()
	for i := 0; i < 3000; i++ {
		f.Push(Task{URL: "u", Depth: i})
	}
	for i := 0; i < 3000; i++ {
		task, ok := f.Pop()
		require.True(t, ok)
		require.Equal(t, i, task.Depth)
		f.Done()
	}
	require.Equal(t, 0, f.Len())
}
