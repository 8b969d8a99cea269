package cache

import (
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New[[]string](time.Minute)

	c.Set("categories", []string{"Informatique", "Langues"})

	val, found := c.Get("categories")
	if !found {
		t.Fatal("Expected to find categories")
	}
	if len(val) != 2 || val[0] != "Informatique" {
		t.Errorf("Expected cached slice, got %v", val)
	}
}

func TestCache_Expiration(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	c := New[string](time.Minute)
	c.now = func() time.Time { return now }

	c.Set("key1", "value1")

	if _, found := c.Get("key1"); !found {
		t.Error("Expected to find key1 immediately")
	}

	now = now.Add(61 * time.Second)

	if _, found := c.Get("key1"); found {
		t.Error("Expected key1 to be expired")
	}
	if _, stored := c.store["key1"]; stored {
		t.Error("Expected expired entry to be dropped on read")
	}
}

func TestCache_Purge(t *testing.T) {
	c := New[string](time.Minute)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Purge()

	for _, key := range []string{"key1", "key2"} {
		if _, found := c.Get(key); found {
			t.Errorf("Expected %s to be purged", key)
		}
	}
}
