package chat

import (
	"strings"

	"github.com/tetrlabs/professor-server/api"
)

//Draft is the in-progress assistant message for one turn. Content is
//append-only and sources are write-once: the first non-empty sources payload
//wins and later ones are ignored.
type Draft struct {
	content strings.Builder
	sources []*api.Source
}

//Snapshot is the UI-visible state of a Draft. Content is the full accumulated
//text; a display replaces the previous snapshot rather than appending.
type Snapshot struct {
	Content string
	Sources []*api.Source
}

//Append adds a content fragment and returns the updated Snapshot
func (d *Draft) Append(fragment string) *Snapshot {
	d.content.WriteString(fragment)
	return d.Snapshot()
}

//SetSources records the turn's sources if none were recorded yet and reports
//whether the payload was kept
func (d *Draft) SetSources(sources []*api.Source) bool {
	if len(d.sources) > 0 || len(sources) == 0 {
		return false
	}
	d.sources = sources
	return true
}

//Content returns the accumulated text
func (d *Draft) Content() string {
	return d.content.String()
}

//Sources returns the turn's sources, or nil if none were received
func (d *Draft) Sources() []*api.Source {
	return d.sources
}

//Snapshot returns the current UI-visible state
func (d *Draft) Snapshot() *Snapshot {
	return &Snapshot{Content: d.content.String(), Sources: d.sources}
}

//Empty reports whether no meaningful content was accumulated
func (d *Draft) Empty() bool {
	return strings.TrimSpace(d.content.String()) == ""
}

//DisplaySources de-duplicates sources for display, keyed by (title, class name).
//Order of first appearance is preserved.
func DisplaySources(sources []*api.Source) []*api.Source {
	type key struct {
		title     string
		className string
	}

	seen := make(map[key]struct{}, len(sources))
	var out []*api.Source
	for _, source := range sources {
		k := key{}
		if source.Metadata != nil {
			k.title = source.Metadata.Title
			k.className = source.Metadata.ClassName
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, source)
	}
	return out
}
