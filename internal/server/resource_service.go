package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spitzerl/workshop-b3-api/internal/api"
	"github.com/spitzerl/workshop-b3-api/internal/models"
	"github.com/spitzerl/workshop-b3-api/internal/store"
)

// ResourceService validates and persists generic owned resources.
type ResourceService struct {
	store store.ResourceStore
}

func NewResourceService(resourceStore store.ResourceStore) *ResourceService {
	return &ResourceService{store: resourceStore}
}

func (rs *ResourceService) Create(ctx context.Context, req api.ResourceCreateRequest) (models.Resource, error) {
	if err := rs.ready(); err != nil {
		return models.Resource{}, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Resource{}, badRequestCode(fmt.Errorf("title is required"), ErrCodeMissingRequired)
	}
	if req.OwnerID <= 0 {
		return models.Resource{}, badRequestCode(fmt.Errorf("ownerId is required"), ErrCodeMissingRequired)
	}

	resource := &models.Resource{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     req.OwnerID,
	}
	if req.UserID != nil && *req.UserID > 0 {
		assignee := *req.UserID
		resource.UserID = &assignee
	}
	if err := rs.store.CreateResource(ctx, resource); err != nil {
		return models.Resource{}, resourceStoreError(err)
	}
	return rs.Get(ctx, resource.ID)
}

func (rs *ResourceService) List(ctx context.Context, ownerID int64) ([]models.Resource, error) {
	if err := rs.ready(); err != nil {
		return nil, err
	}
	resources, err := rs.store.ListResources(ctx, ownerID)
	if err != nil {
		return nil, storeFailure(err)
	}
	return resources, nil
}

func (rs *ResourceService) Get(ctx context.Context, id int64) (models.Resource, error) {
	if err := rs.ready(); err != nil {
		return models.Resource{}, err
	}
	resource, err := rs.store.GetResource(ctx, id)
	if err != nil {
		return models.Resource{}, storeFailure(err)
	}
	if resource == nil {
		return models.Resource{}, notFoundCode(fmt.Errorf("resource not found"), ErrCodeResourceNotFound)
	}
	return *resource, nil
}

func (rs *ResourceService) Update(ctx context.Context, id int64, req api.ResourceUpdateRequest) (models.Resource, error) {
	if err := rs.ready(); err != nil {
		return models.Resource{}, err
	}
	if req.Title == nil && req.Description == nil && req.UserID == nil && req.OwnerID == nil {
		return models.Resource{}, badRequestCode(fmt.Errorf("no fields to update"), ErrCodeMissingRequired)
	}
	update := store.ResourceUpdate{
		Description: req.Description,
		UserID:      req.UserID,
		OwnerID:     req.OwnerID,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return models.Resource{}, badRequestCode(fmt.Errorf("title cannot be empty"), ErrCodeInvalidArgument)
		}
		update.Title = &title
	}
	if err := rs.store.UpdateResource(ctx, id, update); err != nil {
		return models.Resource{}, resourceStoreError(err)
	}
	return rs.Get(ctx, id)
}

func (rs *ResourceService) Delete(ctx context.Context, id int64) error {
	if err := rs.ready(); err != nil {
		return err
	}
	if err := rs.store.DeleteResource(ctx, id); err != nil {
		return resourceStoreError(err)
	}
	return nil
}

func (rs *ResourceService) ready() error {
	if rs == nil || rs.store == nil {
		return internalError(fmt.Errorf("resource service is not configured"))
	}
	return nil
}

func resourceStoreError(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return notFoundCode(fmt.Errorf("resource not found"), ErrCodeResourceNotFound)
	case errors.Is(err, store.ErrOwnerRequired):
		return badRequestCode(err, ErrCodeMissingRequired)
	case errors.Is(err, store.ErrForeignKey):
		return badRequestCode(fmt.Errorf("owner or assignee does not exist"), ErrCodeUnknownOwner)
	default:
		return storeFailure(err)
	}
}
