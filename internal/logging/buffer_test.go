package logging

import (
	"fmt"
	"reflect"
	"testing"
)

func TestBufferRollsOver(t *testing.T) {
	b := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		b.Append(fmt.Sprintf("line %d", i))
	}

	want := []string{"line 3", "line 4", "line 5"}
	if got := b.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
	if b.Len() != 3 {
		t.Errorf("Len() = %d, want 3", b.Len())
	}
}

func TestBufferWriteSplitsLines(t *testing.T) {
	b := NewBuffer(10)
	if _, err := b.Write([]byte("first\nsecond\n")); err != nil {
		t.Fatal(err)
	}

	want := []string{"first", "second"}
	if got := b.Lines(); !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
}

func TestBufferAsLoggerOutput(t *testing.T) {
	b := NewBuffer(10)
	log := NewLogger("test")
	log.outputs = nil
	log.AddOutput(b)

	log.Info("hello")
	log.Debug("filtered out at info level")

	lines := b.Lines()
	if len(lines) != 1 {
		t.Fatalf("Lines() = %v, want one entry", lines)
	}
}
