package release

import (
	"context"
	"fmt"

	"go_releasehub/internal/model"
)

// Tab is the entity list a client shows for a release
type Tab string

const (
	TabEntries Tab = "entries"
	TabAssets  Tab = "assets"
)

func tabFor(linkType model.LinkType) Tab {
	if linkType == model.LinkTypeAsset {
		return TabAssets
	}
	return TabEntries
}

// ValidationResult 校验结果
type ValidationResult struct {
	Errored []model.EntityError `json:"errored"`
}

// Passed reports whether every entity passed validation
func (r *ValidationResult) Passed() bool {
	return len(r.Errored) == 0
}

// ValidationCoordinator runs validation and decides which tab to surface
type ValidationCoordinator struct {
	api Validator
}

// NewValidationCoordinator 创建校验协调器
func NewValidationCoordinator(api Validator) *ValidationCoordinator {
	return &ValidationCoordinator{api: api}
}

// Validate validates the release for the given action (publish when empty)
func (v *ValidationCoordinator) Validate(ctx context.Context, releaseID string, action model.ActionType) (*ValidationResult, error) {
	errored, err := v.api.ValidateRelease(ctx, releaseID, action)
	if err != nil {
		return nil, fmt.Errorf("validate release %s: %w", releaseID, err)
	}
	if errored == nil {
		errored = []model.EntityError{}
	}
	return &ValidationResult{Errored: errored}, nil
}

// SelectTab returns the tab of the single link type shared by all errored
// entities. Mixed types or no errors keep current.
func SelectTab(errored []model.EntityError, current Tab) Tab {
	if len(errored) == 0 {
		return current
	}
	linkType := errored[0].LinkType
	for _, e := range errored[1:] {
		if e.LinkType != linkType {
			return current
		}
	}
	return tabFor(linkType)
}

// ErrorsByEntity indexes validation errors by entity id for badge rendering
func ErrorsByEntity(errored []model.EntityError) map[string][]model.EntityError {
	out := make(map[string][]model.EntityError, len(errored))
	for _, e := range errored {
		out[e.EntityID] = append(out[e.EntityID], e)
	}
	return out
}
