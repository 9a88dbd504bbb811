package engine

import "github.com/lysgoup/adaptived/policy"

// PageID is an opaque stable identifier for a cached page, valid for the
// lifetime of its residency. The host typically derives it from the page
// descriptor address; the engine only requires equality and hashing.
type PageID uint64

// Page is the host's handle for one cached page. Identity is stable while
// the page is resident; the flag accessors read live host state and may
// change between calls.
type Page interface {
	policy.Page
	ID() PageID
}

// PageInfo is a plain-value Page implementation for hosts and tests that
// do not carry live descriptors.
type PageInfo struct {
	PageID     PageID
	Ino        uint64
	Off        uint64
	IsUptodate bool
	IsRecent   bool
	IsDirty    bool
}

func (p PageInfo) ID() PageID         { return p.PageID }
func (p PageInfo) Inode() uint64      { return p.Ino }
func (p PageInfo) Offset() uint64     { return p.Off }
func (p PageInfo) Uptodate() bool     { return p.IsUptodate }
func (p PageInfo) RecentlyUsed() bool { return p.IsRecent }
func (p PageInfo) Dirty() bool        { return p.IsDirty }
