package source

// PageCursor threads pagination state between discover/search calls. It is
// opaque to callers: hand back whatever the previous call returned, or nil to
// start from page one. A nil next cursor means no further pages.
type PageCursor struct {
	Page int
	Seen map[string]struct{}
}

// normalized tolerates nil and partially-filled cursors by treating missing
// fields as fresh state.
func (c *PageCursor) normalized() *PageCursor {
	if c == nil {
		return &PageCursor{Page: 1, Seen: map[string]struct{}{}}
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.Seen == nil {
		c.Seen = map[string]struct{}{}
	}

	return c
}

// remember reports whether id is new to this pagination session and records it.
func (c *PageCursor) remember(id string) bool {
	if _, dup := c.Seen[id]; dup {
		return false
	}
	c.Seen[id] = struct{}{}

	return true
}

// advance returns the cursor for the next page, keeping the same seen-set, or
// nil when the document showed no next-page affordance.
func (c *PageCursor) advance(hasMore bool) *PageCursor {
	if !hasMore {
		return nil
	}

	return &PageCursor{Page: c.Page + 1, Seen: c.Seen}
}
