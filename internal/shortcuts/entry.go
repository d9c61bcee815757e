package shortcuts

import (
	"fmt"
	"strconv"

	"vgi/internal/vdf"
)

// Entry is one non-Steam shortcut record.
type Entry struct {
	AppID              int32
	AppName            string
	Exe                string
	StartDir           string
	Icon               string
	ShortcutPath       string
	LaunchOptions      string
	IsHidden           int32
	AllowDesktopConfig int32
	OpenVR             int32
	Tag                string
}

// NewEntry builds a shortcut entry with the fixed flag defaults the launcher
// expects for injected shortcuts.
func NewEntry(appID int32, name, exe, startDir, icon, launchOpts string) Entry {
	return Entry{
		AppID:              appID,
		AppName:            name,
		Exe:                exe,
		StartDir:           startDir,
		Icon:               icon,
		LaunchOptions:      launchOpts,
		AllowDesktopConfig: 1,
		Tag:                "Non-Steam",
	}
}

// Node converts the entry to its store representation.
func (e Entry) Node() *vdf.Node {
	n := vdf.NewMap()
	n.Set("appid", vdf.Int(e.AppID))
	n.Set("appname", vdf.String(e.AppName))
	n.Set("exe", vdf.String(e.Exe))
	n.Set("StartDir", vdf.String(e.StartDir))
	n.Set("icon", vdf.String(e.Icon))
	n.Set("ShortcutPath", vdf.String(e.ShortcutPath))
	n.Set("LaunchOptions", vdf.String(e.LaunchOptions))
	n.Set("IsHidden", vdf.Int(e.IsHidden))
	n.Set("AllowDesktopConfig", vdf.Int(e.AllowDesktopConfig))
	n.Set("OpenVR", vdf.Int(e.OpenVR))
	tags := vdf.NewMap()
	tags.Set("0", vdf.String(e.Tag))
	n.Set("tags", tags)
	return n
}

// EntryFromNode reads the fields of a stored entry. Missing fields are left
// zero; stores written by other tools carry extra fields that are ignored.
func EntryFromNode(n *vdf.Node) (Entry, bool) {
	if !n.IsMap() {
		return Entry{}, false
	}
	e := Entry{}
	if v, ok := n.Get("appid"); ok {
		e.AppID = v.IntValue()
	}
	if v, ok := n.Get("appname"); ok {
		e.AppName = v.StringValue()
	}
	if v, ok := n.Get("exe"); ok {
		e.Exe = v.StringValue()
	}
	if v, ok := n.Get("StartDir"); ok {
		e.StartDir = v.StringValue()
	}
	if v, ok := n.Get("icon"); ok {
		e.Icon = v.StringValue()
	}
	if v, ok := n.Get("LaunchOptions"); ok {
		e.LaunchOptions = v.StringValue()
	}
	if v, ok := n.Get("IsHidden"); ok {
		e.IsHidden = v.IntValue()
	}
	if tags, ok := n.Get("tags"); ok {
		if tag, ok := tags.Get("0"); ok {
			e.Tag = tag.StringValue()
		}
	}
	return e, true
}

// NextSlot returns the next free slot key: "0" for an empty container,
// otherwise max(existing integer keys)+1. Gaps are never reused so a freed
// slot cannot collide with state other tools may still hold.
func NextSlot(container *vdf.Node) string {
	max := -1
	for _, key := range container.Keys() {
		n, err := strconv.Atoi(key)
		if err != nil || n < 0 {
			continue
		}
		if n > max {
			max = n
		}
	}
	return strconv.Itoa(max + 1)
}

// Insert stores the entry at the next free slot and returns the slot key.
func Insert(container *vdf.Node, entry Entry) string {
	slot := NextSlot(container)
	container.Set(slot, entry.Node())
	return slot
}

// PatchLaunchOptions rewrites the LaunchOptions field of the entry at slot.
func PatchLaunchOptions(container *vdf.Node, slot, value string) error {
	node, ok := container.Get(slot)
	if !ok || !node.IsMap() {
		return fmt.Errorf("no entry at slot %q", slot)
	}
	node.Set("LaunchOptions", vdf.String(value))
	return nil
}

// FindByName returns the slot and entry of the first record whose appname
// matches, scanning in store order.
func FindByName(container *vdf.Node, name string) (string, Entry, bool) {
	for _, slot := range container.Keys() {
		node, _ := container.Get(slot)
		entry, ok := EntryFromNode(node)
		if ok && entry.AppName == name {
			return slot, entry, true
		}
	}
	return "", Entry{}, false
}

// FindMatch returns the slot and entry of the first record matching both the
// appname and the exe. An entry that shares the name but points at a
// different executable, such as a stale record from a moved prefix, is not a
// match so the caller appends a fresh one.
func FindMatch(container *vdf.Node, name, exe string) (string, Entry, bool) {
	for _, slot := range container.Keys() {
		node, _ := container.Get(slot)
		entry, ok := EntryFromNode(node)
		if ok && entry.AppName == name && entry.Exe == exe {
			return slot, entry, true
		}
	}
	return "", Entry{}, false
}
