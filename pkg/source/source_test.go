package source

import (
	"context"
	"testing"
)

func TestNullKnowsNothing(t *testing.T) {
	if Null.Name() != "NULL" {
		t.Errorf("unexpected name %q", Null.Name())
	}
	if err := Null.Load(context.Background()); err != nil {
		t.Errorf("Load: %v", err)
	}
	if Null.IsValidWord("hello") {
		t.Error("null source must not validate words")
	}
	if Null.AddWord("hello", 1) {
		t.Error("null source must refuse additions")
	}
	Null.DeleteWord("hello")
	Null.NotifyTyped("hello")
	Null.ResetSentence()

	var sink Collector
	Null.Words(TypedWord("he"), &sink)
	if len(sink.Candidates) != 0 {
		t.Errorf("null source emitted %v", sink.Words())
	}
	if got := Null.NextWords("hello", 5, 0); len(got) != 0 {
		t.Errorf("null source predicted %v", got)
	}
}

func TestNullIsComparable(t *testing.T) {
	var d Dictionary = Null
	if d != Dictionary(Null) {
		t.Error("sentinel must compare equal to itself")
	}
	var n NextWords = Null
	if n != NextWords(Null) {
		t.Error("sentinel must compare equal in every role")
	}
}

func TestCollector(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		words []string
		want  []string
	}{
		{"unbounded", 0, []string{"a", "b", "c"}, []string{"a", "b", "c"}},
		{"limited", 2, []string{"a", "b", "c"}, []string{"a", "b"}},
		{"empty", 3, nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Collector{Limit: tt.limit}
			for _, w := range tt.words {
				c.Add(w, 1)
			}
			got := c.Words()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCollectorSignalsFull(t *testing.T) {
	c := Collector{Limit: 2}
	if !c.Add("a", 1) {
		t.Error("first add should ask for more")
	}
	if c.Add("b", 1) {
		t.Error("add reaching the limit should ask to stop")
	}
	if c.Add("c", 1) {
		t.Error("add past the limit should be refused")
	}
}

func TestTypedWord(t *testing.T) {
	var in Input = TypedWord("abc")
	if in.Word() != "abc" {
		t.Errorf("got %q", in.Word())
	}
}
