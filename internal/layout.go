package internal

import "strconv"

// KeySidebarCollapsed is owned by the page layout, stored next to the assistant's keys
const KeySidebarCollapsed = "sidebarCollapsed"

// LayoutPrefs reads and writes the sidebar-collapsed flag
type LayoutPrefs struct {
	kv KV
}

// NewLayoutPrefs creates LayoutPrefs over kv
func NewLayoutPrefs(kv KV) *LayoutPrefs {
	return &LayoutPrefs{kv: kv}
}

// SidebarCollapsed reports the stored flag. Anything but "true" means expanded.
func (p *LayoutPrefs) SidebarCollapsed() bool {
	v, err := p.kv.Get(KeySidebarCollapsed)
	if err != nil {
		return false
	}
	return v == "true"
}

// SetSidebarCollapsed stores the flag
func (p *LayoutPrefs) SetSidebarCollapsed(collapsed bool) error {
	return p.kv.Set(KeySidebarCollapsed, strconv.FormatBool(collapsed))
}

// ToggleSidebar flips the flag and returns the new value
func (p *LayoutPrefs) ToggleSidebar() (bool, error) {
	collapsed := !p.SidebarCollapsed()
	if err := p.SetSidebarCollapsed(collapsed); err != nil {
		return !collapsed, err
	}
	return collapsed, nil
}
