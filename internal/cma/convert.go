package cma

import (
	"fmt"
	"time"

	"go_releasehub/internal/model"
)

func toReleasePayload(title string, entities []model.EntityLink) *releasePayload {
	p := &releasePayload{Title: title}
	p.Entities.Sys.Type = "Array"
	p.Entities.Items = make([]link, 0, len(entities))
	for _, e := range entities {
		p.Entities.Items = append(p.Entities.Items, newLink(string(e.LinkType), e.ID))
	}
	return p
}

func toRelease(res *releaseResource) *model.Release {
	r := &model.Release{
		ID:        res.Sys.ID,
		Title:     res.Title,
		Version:   res.Sys.Version,
		Entities:  make([]model.EntityLink, 0, len(res.Entities.Items)),
		CreatedAt: res.Sys.CreatedAt,
		UpdatedAt: res.Sys.UpdatedAt,
	}
	for _, item := range res.Entities.Items {
		r.Entities = append(r.Entities, model.EntityLink{
			ID:       item.Sys.ID,
			LinkType: model.LinkType(item.Sys.LinkType),
		})
	}
	if la := res.Sys.LastAction; la != nil && la.Sys.ID != "" {
		r.LastAction = &model.ActionRef{
			ID:     la.Sys.ID,
			Type:   model.ActionType(la.Action),
			Status: model.ActionStatus(la.Sys.Status),
		}
	}
	return r
}

func toReleaseAction(res *releaseActionResource, releaseID string) *model.ReleaseAction {
	a := &model.ReleaseAction{
		ID:        res.Sys.ID,
		ReleaseID: res.Sys.Release.Sys.ID,
		Type:      model.ActionType(res.Action),
		Status:    model.ActionStatus(res.Sys.Status),
	}
	if a.ReleaseID == "" {
		a.ReleaseID = releaseID
	}
	if res.Error != nil {
		a.Errors = toEntityErrors(res.Error.Details.Errors)
	}
	return a
}

func toEntityErrors(errored []erroredEntity) []model.EntityError {
	out := make([]model.EntityError, 0, len(errored))
	for _, e := range errored {
		ee := model.EntityError{
			EntityID: e.Sys.ID,
			LinkType: model.LinkType(e.Sys.LinkType),
		}
		if e.Error != nil {
			ee.Message = e.Error.Message
			if ee.Message == "" {
				ee.Message = e.Error.Sys.ID
			}
		}
		out = append(out, ee)
	}
	return out
}

func entityStatus(sys entitySys) model.EntityStatus {
	switch {
	case sys.ArchivedVersion != nil:
		return model.EntityStatusArchived
	case sys.PublishedVersion == nil:
		return model.EntityStatusDraft
	case sys.Version == *sys.PublishedVersion+1:
		return model.EntityStatusPublished
	default:
		return model.EntityStatusChanged
	}
}

func toScheduledJob(res *scheduledActionResource) (*model.ScheduledJob, error) {
	job := &model.ScheduledJob{
		ID:        res.Sys.ID,
		ReleaseID: res.Entity.Sys.ID,
		Action:    model.ActionType(res.Action),
		Timezone:  res.ScheduledFor.Timezone,
		Status:    model.JobStatus(res.Sys.Status),
	}
	if res.ScheduledFor.Datetime != "" {
		at, err := time.Parse(time.RFC3339, res.ScheduledFor.Datetime)
		if err != nil {
			return nil, fmt.Errorf("parse scheduledFor of job %s: %w", res.Sys.ID, err)
		}
		job.ScheduledAt = at
	}
	return job, nil
}
