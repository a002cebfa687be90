package core

import (
	"sort"

	"github.com/lockstep-sync/lockstep/pkg/filesystem"
)

// Side identifies one of the two sides of a folder pair.
type Side uint8

const (
	// SideLeft identifies the left side.
	SideLeft Side = iota
	// SideRight identifies the right side.
	SideRight
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// String provides a human-readable representation of a side.
func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Category classifies the current state of an item pair.
type Category uint8

const (
	// CategoryEqual indicates that both sides are present and equal under
	// the comparison variant.
	CategoryEqual Category = iota
	// CategoryLeftOnly indicates that the item exists only on the left.
	CategoryLeftOnly
	// CategoryRightOnly indicates that the item exists only on the right.
	CategoryRightOnly
	// CategoryLeftNewer indicates that the left side is newer.
	CategoryLeftNewer
	// CategoryRightNewer indicates that the right side is newer.
	CategoryRightNewer
	// CategoryDifferentContent indicates differing content.
	CategoryDifferentContent
	// CategoryDifferentMetadata indicates equal content but differing
	// metadata.
	CategoryDifferentMetadata
	// CategoryConflict indicates a metadata-only mismatch that can't be
	// resolved automatically. The pair carries a textual reason.
	CategoryConflict
)

// String provides a human-readable representation of a category.
func (c Category) String() string {
	switch c {
	case CategoryEqual:
		return "equal"
	case CategoryLeftOnly:
		return "left only"
	case CategoryRightOnly:
		return "right only"
	case CategoryLeftNewer:
		return "left newer"
	case CategoryRightNewer:
		return "right newer"
	case CategoryDifferentContent:
		return "different content"
	case CategoryDifferentMetadata:
		return "different metadata"
	case CategoryConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// SyncDirection identifies the side that a synchronization operation will
// write (or delete) to bring the pair into sync.
type SyncDirection uint8

const (
	// DirectionNone indicates that no action is required or selected.
	DirectionNone SyncDirection = iota
	// DirectionLeft indicates that the left side will be written.
	DirectionLeft
	// DirectionRight indicates that the right side will be written.
	DirectionRight
)

// String provides a human-readable representation of a direction.
func (d SyncDirection) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return "unknown"
	}
}

// FileAttributes describes one side of a file pair.
type FileAttributes struct {
	// Name is the file's name on this side.
	Name string
	// Size is the file size in bytes.
	Size uint64
	// ModTime is the modification time in seconds since the epoch (UTC).
	ModTime int64
	// FilePrint is the device-persistent file identifier, or 0 if unknown.
	FilePrint uint64
	// IsFollowedSymlink indicates that the file was reached by following a
	// symbolic link.
	IsFollowedSymlink bool
}

// FolderAttributes describes one side of a folder pair.
type FolderAttributes struct {
	// Name is the folder's name on this side.
	Name string
	// IsFollowedSymlink indicates that the folder was reached by following a
	// symbolic link.
	IsFollowedSymlink bool
}

// SymlinkAttributes describes one side of a symbolic link pair.
type SymlinkAttributes struct {
	// Name is the link's name on this side.
	Name string
	// ModTime is the modification time in seconds since the epoch (UTC).
	ModTime int64
	// Target is the link's target string.
	Target string
}

// Pair is the common interface of file, symbolic link, and folder pairs.
type Pair interface {
	// ID returns the pair's stable node identifier within its base.
	ID() uint64
	// Base returns the base folder pair that owns the node.
	Base() *BaseFolderPair
	// Parent returns the containing folder pair, or nil for the root.
	Parent() *FolderPair
	// Type returns the pair's item type.
	Type() filesystem.ItemType
	// NameOnSide returns the item's name on the specified side, or an empty
	// string if the side is empty.
	NameOnSide(side Side) string
	// Name returns the item's display name, preferring the left side.
	Name() string
	// PresentOnSide returns true if the item exists on the specified side.
	PresentOnSide(side Side) bool
	// RelPathOnSide returns the item's relative path on the specified side,
	// or an empty string if the side is empty.
	RelPathOnSide(side Side) string
	// RelPath returns the item's display relative path, preferring the left
	// side.
	RelPath() string
	// PathOnSide returns the item's abstract path on the specified side.
	PathOnSide(side Side) filesystem.AbstractPath
	// Category returns the pair's category.
	Category() Category
	// CategoryReason returns the textual reason accompanying a conflict
	// category.
	CategoryReason() string
	// SetCategory sets the pair's category, with a reason for conflicts.
	SetCategory(category Category, reason string)
	// Direction returns the pair's resolved synchronization direction.
	Direction() SyncDirection
	// SetDirection sets the pair's direction, clearing any direction
	// conflict.
	SetDirection(direction SyncDirection)
	// Conflict returns the direction conflict annotation, or an empty
	// string.
	Conflict() string
	// SetConflict marks the pair as an unresolvable conflict with the
	// specified reason, resetting the direction.
	SetConflict(reason string)
	// Active returns the pair's filter-controlled active flag.
	Active() bool
	// SetActive sets the pair's active flag.
	SetActive(active bool)
	// ClearSide removes the pair's attributes on the specified side,
	// reflecting a successful deletion there. For folders, the removal
	// applies recursively to all descendants.
	ClearSide(side Side)
}

// pairCore carries the state shared by all pair kinds.
type pairCore struct {
	id             uint64
	base           *BaseFolderPair
	parent         *FolderPair
	relPathLeft    string
	relPathRight   string
	category       Category
	categoryReason string
	direction      SyncDirection
	conflict       string
	active         bool
}

// ID implements Pair.ID.
func (p *pairCore) ID() uint64 { return p.id }

// Base implements Pair.Base.
func (p *pairCore) Base() *BaseFolderPair { return p.base }

// Parent implements Pair.Parent.
func (p *pairCore) Parent() *FolderPair { return p.parent }

// Category implements Pair.Category.
func (p *pairCore) Category() Category { return p.category }

// CategoryReason implements Pair.CategoryReason.
func (p *pairCore) CategoryReason() string { return p.categoryReason }

// SetCategory implements Pair.SetCategory.
func (p *pairCore) SetCategory(category Category, reason string) {
	p.category = category
	if category == CategoryConflict {
		p.categoryReason = reason
	} else {
		p.categoryReason = ""
	}
}

// Direction implements Pair.Direction.
func (p *pairCore) Direction() SyncDirection { return p.direction }

// SetDirection implements Pair.SetDirection.
func (p *pairCore) SetDirection(direction SyncDirection) {
	p.direction = direction
	p.conflict = ""
}

// Conflict implements Pair.Conflict.
func (p *pairCore) Conflict() string { return p.conflict }

// SetConflict implements Pair.SetConflict.
func (p *pairCore) SetConflict(reason string) {
	p.direction = DirectionNone
	p.conflict = reason
}

// Active implements Pair.Active.
func (p *pairCore) Active() bool { return p.active }

// SetActive implements Pair.SetActive.
func (p *pairCore) SetActive(active bool) { p.active = active }

// relPathOnSide returns the relative path for the specified side.
func (p *pairCore) relPathOnSide(side Side) string {
	if side == SideLeft {
		return p.relPathLeft
	}
	return p.relPathRight
}

// RelPathOnSide implements Pair.RelPathOnSide.
func (p *pairCore) RelPathOnSide(side Side) string {
	return p.relPathOnSide(side)
}

// RelPath implements Pair.RelPath.
func (p *pairCore) RelPath() string {
	if p.relPathLeft != "" {
		return p.relPathLeft
	}
	return p.relPathRight
}

// PathOnSide implements Pair.PathOnSide.
func (p *pairCore) PathOnSide(side Side) filesystem.AbstractPath {
	root := p.base.Root(side)
	relPath := p.relPathOnSide(side)
	if relPath == "" {
		// The side may be empty; derive the path from the display relative
		// path so that callers can still address the would-be location.
		relPath = p.RelPath()
	}
	if relPath == "" {
		return root
	}
	return filesystem.AbstractPath{Device: root.Device, Path: filesystem.JoinPath(root.Path, relPath)}
}

// FilePair is a paired file item.
type FilePair struct {
	pairCore
	// left and right are the per-side attributes; a nil value marks the side
	// as empty.
	left  *FileAttributes
	right *FileAttributes
	// moveRef is the node ID of the pair's move partner, or 0.
	moveRef uint64
}

// Type implements Pair.Type.
func (f *FilePair) Type() filesystem.ItemType { return filesystem.ItemTypeFile }

// Attributes returns the file attributes on the specified side, or nil if
// the side is empty.
func (f *FilePair) Attributes(side Side) *FileAttributes {
	if side == SideLeft {
		return f.left
	}
	return f.right
}

// PresentOnSide implements Pair.PresentOnSide.
func (f *FilePair) PresentOnSide(side Side) bool { return f.Attributes(side) != nil }

// NameOnSide implements Pair.NameOnSide.
func (f *FilePair) NameOnSide(side Side) string {
	if attributes := f.Attributes(side); attributes != nil {
		return attributes.Name
	}
	return ""
}

// Name implements Pair.Name.
func (f *FilePair) Name() string {
	if f.left != nil {
		return f.left.Name
	}
	return f.right.Name
}

// MoveRef returns the node ID of the pair's move partner, or 0.
func (f *FilePair) MoveRef() uint64 { return f.moveRef }

// MovePartner resolves the pair's move partner through the base's node
// index, or returns nil.
func (f *FilePair) MovePartner() *FilePair {
	if f.moveRef == 0 {
		return nil
	}
	if partner, ok := f.base.files[f.moveRef]; ok {
		return partner
	}
	return nil
}

// ClearSide implements Pair.ClearSide.
func (f *FilePair) ClearSide(side Side) {
	if side == SideLeft {
		f.left = nil
		f.relPathLeft = ""
	} else {
		f.right = nil
		f.relPathRight = ""
	}
}

// SymlinkPair is a paired symbolic link item.
type SymlinkPair struct {
	pairCore
	left  *SymlinkAttributes
	right *SymlinkAttributes
}

// Type implements Pair.Type.
func (s *SymlinkPair) Type() filesystem.ItemType { return filesystem.ItemTypeSymlink }

// Attributes returns the symbolic link attributes on the specified side, or
// nil if the side is empty.
func (s *SymlinkPair) Attributes(side Side) *SymlinkAttributes {
	if side == SideLeft {
		return s.left
	}
	return s.right
}

// PresentOnSide implements Pair.PresentOnSide.
func (s *SymlinkPair) PresentOnSide(side Side) bool { return s.Attributes(side) != nil }

// NameOnSide implements Pair.NameOnSide.
func (s *SymlinkPair) NameOnSide(side Side) string {
	if attributes := s.Attributes(side); attributes != nil {
		return attributes.Name
	}
	return ""
}

// Name implements Pair.Name.
func (s *SymlinkPair) Name() string {
	if s.left != nil {
		return s.left.Name
	}
	return s.right.Name
}

// ClearSide implements Pair.ClearSide.
func (s *SymlinkPair) ClearSide(side Side) {
	if side == SideLeft {
		s.left = nil
		s.relPathLeft = ""
	} else {
		s.right = nil
		s.relPathRight = ""
	}
}

// FolderPair is a paired folder item holding child pairs. Children of each
// kind are maintained in case-sensitive name-sorted order.
type FolderPair struct {
	pairCore
	left  *FolderAttributes
	right *FolderAttributes
	// files, symlinks, and folders are the child pairs.
	files    []*FilePair
	symlinks []*SymlinkPair
	folders  []*FolderPair
}

// Type implements Pair.Type.
func (d *FolderPair) Type() filesystem.ItemType { return filesystem.ItemTypeFolder }

// Attributes returns the folder attributes on the specified side, or nil if
// the side is empty.
func (d *FolderPair) Attributes(side Side) *FolderAttributes {
	if side == SideLeft {
		return d.left
	}
	return d.right
}

// PresentOnSide implements Pair.PresentOnSide.
func (d *FolderPair) PresentOnSide(side Side) bool { return d.Attributes(side) != nil }

// NameOnSide implements Pair.NameOnSide.
func (d *FolderPair) NameOnSide(side Side) string {
	if attributes := d.Attributes(side); attributes != nil {
		return attributes.Name
	}
	return ""
}

// Name implements Pair.Name.
func (d *FolderPair) Name() string {
	if d.left != nil {
		return d.left.Name
	}
	if d.right != nil {
		return d.right.Name
	}
	return ""
}

// Files returns the folder's file pairs in name-sorted order.
func (d *FolderPair) Files() []*FilePair { return d.files }

// Symlinks returns the folder's symbolic link pairs in name-sorted order.
func (d *FolderPair) Symlinks() []*SymlinkPair { return d.symlinks }

// Folders returns the folder's subfolder pairs in name-sorted order.
func (d *FolderPair) Folders() []*FolderPair { return d.folders }

// ClearSide implements Pair.ClearSide. The removal applies recursively to
// all descendants, reflecting a recursive deletion on the side.
func (d *FolderPair) ClearSide(side Side) {
	for _, file := range d.files {
		file.ClearSide(side)
	}
	for _, symlink := range d.symlinks {
		symlink.ClearSide(side)
	}
	for _, folder := range d.folders {
		folder.ClearSide(side)
	}
	if side == SideLeft {
		d.left = nil
		d.relPathLeft = ""
	} else {
		d.right = nil
		d.relPathRight = ""
	}
}

// Walk performs a depth-first traversal of the folder's descendants (not the
// folder itself), visiting files, then symbolic links, then subfolders, each
// in name-sorted order.
func (d *FolderPair) Walk(visitor func(Pair)) {
	for _, file := range d.files {
		visitor(file)
	}
	for _, symlink := range d.symlinks {
		visitor(symlink)
	}
	for _, folder := range d.folders {
		visitor(folder)
		folder.Walk(visitor)
	}
}

// PruneEmpty removes descendant pairs that are empty on both sides. A folder
// pair is removed only if it is empty on both sides after its own children
// have been pruned.
func (d *FolderPair) PruneEmpty() {
	files := d.files[:0]
	for _, file := range d.files {
		if file.left != nil || file.right != nil {
			files = append(files, file)
		} else {
			delete(d.base.files, file.id)
		}
	}
	d.files = files

	symlinks := d.symlinks[:0]
	for _, symlink := range d.symlinks {
		if symlink.left != nil || symlink.right != nil {
			symlinks = append(symlinks, symlink)
		}
	}
	d.symlinks = symlinks

	folders := d.folders[:0]
	for _, folder := range d.folders {
		folder.PruneEmpty()
		if folder.left != nil || folder.right != nil || len(folder.files) > 0 ||
			len(folder.symlinks) > 0 || len(folder.folders) > 0 {
			folders = append(folders, folder)
		}
	}
	d.folders = folders
}

// BaseFolderPair is the root of one pair tree, pairing a configured left
// root with a right root.
type BaseFolderPair struct {
	// leftRoot and rightRoot are the configured roots.
	leftRoot  filesystem.AbstractPath
	rightRoot filesystem.AbstractPath
	// root is the root folder pair. It is present on both sides by
	// definition.
	root *FolderPair
	// nextID is the next node ID to issue.
	nextID uint64
	// files indexes file pairs by node ID for move-reference resolution.
	files map[uint64]*FilePair
}

// NewBaseFolderPair creates an empty pair tree for the specified roots.
func NewBaseFolderPair(leftRoot, rightRoot filesystem.AbstractPath) *BaseFolderPair {
	base := &BaseFolderPair{
		leftRoot:  leftRoot,
		rightRoot: rightRoot,
		nextID:    1,
		files:     make(map[uint64]*FilePair),
	}
	base.root = &FolderPair{
		pairCore: pairCore{id: 0, base: base, active: true},
		left:     &FolderAttributes{},
		right:    &FolderAttributes{},
	}
	return base
}

// Root returns the configured root for the specified side.
func (b *BaseFolderPair) Root(side Side) filesystem.AbstractPath {
	if side == SideLeft {
		return b.leftRoot
	}
	return b.rightRoot
}

// RootPair returns the root folder pair.
func (b *BaseFolderPair) RootPair() *FolderPair {
	return b.root
}

// Walk performs a depth-first traversal of the whole tree, excluding the
// root pair itself.
func (b *BaseFolderPair) Walk(visitor func(Pair)) {
	b.root.Walk(visitor)
}

// FileByID resolves a file pair by node ID, or returns nil.
func (b *BaseFolderPair) FileByID(id uint64) *FilePair {
	return b.files[id]
}

// issueID issues the next node ID.
func (b *BaseFolderPair) issueID() uint64 {
	id := b.nextID
	b.nextID++
	return id
}

// childRelPath computes a child's relative path on a side given its name
// there, or an empty string if the child is absent on the side.
func childRelPath(parent *FolderPair, side Side, name string) string {
	if name == "" {
		return ""
	}
	parentRelPath := parent.relPathOnSide(side)
	if parentRelPath == "" && parent.parent != nil {
		// The parent chain is broken on this side; fall back to the display
		// path so the child still has a usable address.
		parentRelPath = parent.RelPath()
	}
	if parentRelPath == "" {
		return name
	}
	return filesystem.JoinPath(parentRelPath, name)
}

// AddFile adds a file pair to the folder. At least one side must be
// non-nil.
func (d *FolderPair) AddFile(left, right *FileAttributes) *FilePair {
	if left == nil && right == nil {
		panic("file pair empty on both sides")
	}
	file := &FilePair{
		pairCore: pairCore{
			id:     d.base.issueID(),
			base:   d.base,
			parent: d,
			active: true,
		},
		left:  left,
		right: right,
	}
	if left != nil {
		file.relPathLeft = childRelPath(d, SideLeft, left.Name)
	}
	if right != nil {
		file.relPathRight = childRelPath(d, SideRight, right.Name)
	}
	index := sort.Search(len(d.files), func(i int) bool {
		return d.files[i].Name() >= file.Name()
	})
	d.files = append(d.files, nil)
	copy(d.files[index+1:], d.files[index:])
	d.files[index] = file
	d.base.files[file.id] = file
	return file
}

// AddSymlink adds a symbolic link pair to the folder. At least one side must
// be non-nil.
func (d *FolderPair) AddSymlink(left, right *SymlinkAttributes) *SymlinkPair {
	if left == nil && right == nil {
		panic("symlink pair empty on both sides")
	}
	symlink := &SymlinkPair{
		pairCore: pairCore{
			id:     d.base.issueID(),
			base:   d.base,
			parent: d,
			active: true,
		},
		left:  left,
		right: right,
	}
	if left != nil {
		symlink.relPathLeft = childRelPath(d, SideLeft, left.Name)
	}
	if right != nil {
		symlink.relPathRight = childRelPath(d, SideRight, right.Name)
	}
	index := sort.Search(len(d.symlinks), func(i int) bool {
		return d.symlinks[i].Name() >= symlink.Name()
	})
	d.symlinks = append(d.symlinks, nil)
	copy(d.symlinks[index+1:], d.symlinks[index:])
	d.symlinks[index] = symlink
	return symlink
}

// AddFolder adds a subfolder pair to the folder. At least one side must be
// non-nil.
func (d *FolderPair) AddFolder(left, right *FolderAttributes) *FolderPair {
	if left == nil && right == nil {
		panic("folder pair empty on both sides")
	}
	folder := &FolderPair{
		pairCore: pairCore{
			id:     d.base.issueID(),
			base:   d.base,
			parent: d,
			active: true,
		},
		left:  left,
		right: right,
	}
	if left != nil {
		folder.relPathLeft = childRelPath(d, SideLeft, left.Name)
	}
	if right != nil {
		folder.relPathRight = childRelPath(d, SideRight, right.Name)
	}
	index := sort.Search(len(d.folders), func(i int) bool {
		return d.folders[i].Name() >= folder.Name()
	})
	d.folders = append(d.folders, nil)
	copy(d.folders[index+1:], d.folders[index:])
	d.folders[index] = folder
	return folder
}
