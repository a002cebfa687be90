package core

import (
	"testing"
)

// TestDetectMovesGenuineMove tests that a rename appearing as a one-sided
// deletion plus a one-sided creation is linked into a move pair.
func TestDetectMovesGenuineMove(t *testing.T) {
	// The database recorded sub/c.txt with file print 42 on both sides.
	db := NewInSyncFolder(FolderStatusNormal)
	sub := NewInSyncFolder(FolderStatusNormal)
	sub.Files["c.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 50, FilePrint: 42},
		Right:   DescrFile{ModTime: 50, FilePrint: 42},
		Size:    5,
		Variant: VariantTimeSize,
	}
	db.Folders["sub"] = sub

	// The file was moved to moved/c.txt on the left; the right still has it
	// at the old path.
	base := testBase()
	subPair := base.RootPair().AddFolder(tFolder("sub"), tFolder("sub"))
	movedPair := base.RootPair().AddFolder(tFolder("moved"), tFolder("moved"))
	oldLocation := subPair.AddFile(nil, tFilePrint("c.txt", 5, 50, 42))
	newLocation := movedPair.AddFile(tFilePrint("c.txt", 5, 50, 42), nil)

	DetectMoves(base, db, tCompare(2))

	// The references must be mutually consistent and span opposite sides.
	if newLocation.MoveRef() != oldLocation.ID() || oldLocation.MoveRef() != newLocation.ID() {
		t.Fatalf("move references not mutual: %d/%d vs %d/%d",
			newLocation.MoveRef(), oldLocation.ID(), oldLocation.MoveRef(), newLocation.ID())
	}
	if newLocation.MovePartner() != oldLocation {
		t.Error("move partner resolution failed")
	}
}

// TestDetectMovesPathPriority tests that path-indexed candidates must match
// the record's size and time exactly, without FAT tolerance.
func TestDetectMovesPathPriority(t *testing.T) {
	db := NewInSyncFolder(FolderStatusNormal)
	db.Files["c.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 50, FilePrint: 42},
		Right:   DescrFile{ModTime: 50, FilePrint: 42},
		Size:    5,
		Variant: VariantTimeSize,
	}

	// The right-side candidate at the recorded path is off by one second -
	// within FAT tolerance, but path matching refuses tolerance, and the
	// candidate carries no print to fall back on.
	base := testBase()
	right := base.RootPair().AddFile(nil, tFile("c.txt", 5, 51))
	left := base.RootPair().AddFile(tFilePrint("moved.txt", 5, 50, 42), nil)

	DetectMoves(base, db, tCompare(2))

	if right.MoveRef() != 0 || left.MoveRef() != 0 {
		t.Error("move pair formed from an inexact path candidate")
	}
}

// TestDetectMovesDuplicatePurge tests that every member of an equal-print
// run has its print cleared and that no pairing results.
func TestDetectMovesDuplicatePurge(t *testing.T) {
	db := NewInSyncFolder(FolderStatusNormal)
	db.Files["c.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 50, FilePrint: 42},
		Right:   DescrFile{ModTime: 50, FilePrint: 42},
		Size:    5,
		Variant: VariantTimeSize,
	}

	// Two left-only files share print 42 (hardlink ambiguity); the right
	// side has a print-42 candidate at a non-recorded path.
	base := testBase()
	first := base.RootPair().AddFile(tFilePrint("one.txt", 5, 50, 42), nil)
	second := base.RootPair().AddFile(tFilePrint("two.txt", 5, 50, 42), nil)
	right := base.RootPair().AddFile(nil, tFilePrint("other.txt", 5, 50, 42))

	DetectMoves(base, db, tCompare(2))

	// All members of the run lose their prints.
	if first.Attributes(SideLeft).FilePrint != 0 || second.Attributes(SideLeft).FilePrint != 0 {
		t.Error("duplicate prints not cleared")
	}
	// No pairing may form on the ambiguous side.
	if first.MoveRef() != 0 || second.MoveRef() != 0 || right.MoveRef() != 0 {
		t.Error("move pair formed despite duplicate prints")
	}
}

// TestDetectMovesStaleRecordRejected tests that records superseded by a
// stricter variant provide no pairing evidence.
func TestDetectMovesStaleRecordRejected(t *testing.T) {
	db := NewInSyncFolder(FolderStatusNormal)
	db.Files["c.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 50, FilePrint: 42},
		Right:   DescrFile{ModTime: 50, FilePrint: 42},
		Size:    5,
		Variant: VariantTimeSize,
	}

	base := testBase()
	left := base.RootPair().AddFile(tFilePrint("moved.txt", 5, 50, 42), nil)
	right := base.RootPair().AddFile(nil, tFilePrint("c.txt", 5, 50, 42))

	// Under the content variant, a time-size record is stale.
	DetectMoves(base, db, &CompareConfig{Variant: VariantContent, FileTimeTolerance: 2})

	if left.MoveRef() != 0 || right.MoveRef() != 0 {
		t.Error("move pair formed from a stale record")
	}
}

// TestDetectMovesAlreadyPairedSkipped tests that a candidate participates in
// at most one move pair.
func TestDetectMovesAlreadyPairedSkipped(t *testing.T) {
	// Two records reference the same print on the left (the file was
	// recorded under two names at different times is impossible, but two
	// records may resolve to the same surviving candidate).
	db := NewInSyncFolder(FolderStatusNormal)
	db.Files["a.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 50, FilePrint: 42},
		Right:   DescrFile{ModTime: 50},
		Size:    5,
		Variant: VariantTimeSize,
	}
	db.Files["b.txt"] = &InSyncFile{
		Left:    DescrFile{ModTime: 60, FilePrint: 42},
		Right:   DescrFile{ModTime: 60},
		Size:    5,
		Variant: VariantTimeSize,
	}

	base := testBase()
	left := base.RootPair().AddFile(tFilePrint("moved.txt", 5, 50, 42), nil)
	firstRight := base.RootPair().AddFile(nil, tFile("a.txt", 5, 50))
	secondRight := base.RootPair().AddFile(nil, tFile("b.txt", 5, 60))

	DetectMoves(base, db, tCompare(2))

	// Exactly one pairing may form, and it must be mutual.
	paired := 0
	for _, candidate := range []*FilePair{firstRight, secondRight} {
		if candidate.MoveRef() != 0 {
			paired++
			if candidate.MoveRef() != left.ID() || left.MoveRef() != candidate.ID() {
				t.Error("pairing not mutual")
			}
		}
	}
	if paired != 1 {
		t.Errorf("%d pairings formed, expected 1", paired)
	}
}
