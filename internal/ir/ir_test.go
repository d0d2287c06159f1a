package ir

import "testing"

func TestGrowOutArgsReservesLowFrameSpace(t *testing.T) {
	t.Run("named symbols keep their offsets", func(t *testing.T) {
		withArgs := NewSymbolTable()
		withArgs.Declare("a", 4, 1)
		withArgs.Declare("b", 4, 1)
		withArgs.GrowOutArgs(12) // three-argument call
		withArgs.FinalizeOffsets()

		plain := NewSymbolTable()
		plain.Declare("a", 4, 1)
		plain.Declare("b", 4, 1)
		plain.FinalizeOffsets()

		symA, _ := withArgs.Lookup("a")
		plainA, _ := plain.Lookup("a")
		if symA.Offset != plainA.Offset {
			t.Fatalf("outgoing-arg reservation perturbed a named offset: %d vs %d", symA.Offset, plainA.Offset)
		}
	})

	t.Run("reservation inflates the frame total", func(t *testing.T) {
		// 8 bytes of locals alone round to 16; with 12 reserved bytes the
		// 20-byte total rounds to 32.
		table := NewSymbolTable()
		table.Declare("a", 4, 1)
		table.Declare("b", 4, 1)
		table.GrowOutArgs(12)
		table.FinalizeOffsets()
		if table.StackSize != 32 {
			t.Fatalf("expected reserved bytes to grow StackSize to 32, got %d", table.StackSize)
		}
	})

	t.Run("no reservation leaves StackSize at zero for an empty table", func(t *testing.T) {
		table := NewSymbolTable()
		table.FinalizeOffsets()
		if table.StackSize != 0 {
			t.Fatalf("expected StackSize 0, got %d", table.StackSize)
		}
	})
}
