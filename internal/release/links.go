package release

import (
	"fmt"
	"strings"

	"go_releasehub/internal/model"
)

// DedupeLinks 去重实体链接，保留首次出现的顺序
func DedupeLinks(links []model.EntityLink) []model.EntityLink {
	seen := make(map[model.EntityLink]struct{}, len(links))
	out := make([]model.EntityLink, 0, len(links))
	for _, l := range links {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// ValidateLinks checks every link has an id and an Entry/Asset type
func ValidateLinks(links []model.EntityLink) error {
	for i, l := range links {
		if strings.TrimSpace(l.ID) == "" {
			return fmt.Errorf("%w: entities[%d]: id is required", ErrInvalidParams, i)
		}
		if !l.LinkType.Valid() {
			return fmt.Errorf("%w: entities[%d]: linkType must be Entry or Asset, got %q", ErrInvalidParams, i, l.LinkType)
		}
	}
	return nil
}

// removeLinks returns links without any of the given ones
func removeLinks(links, remove []model.EntityLink) []model.EntityLink {
	drop := make(map[model.EntityLink]struct{}, len(remove))
	for _, l := range remove {
		drop[l] = struct{}{}
	}
	out := make([]model.EntityLink, 0, len(links))
	for _, l := range links {
		if _, ok := drop[l]; !ok {
			out = append(out, l)
		}
	}
	return out
}
