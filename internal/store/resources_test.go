package store

import (
	"context"
	"errors"
	"testing"

	"github.com/spitzerl/workshop-b3-api/internal/models"
)

func TestResourceCRUD(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")
	assignee := testUser(t, st, "assignee@example.com")

	resource := &models.Resource{Title: "Projector", Description: "room 2", OwnerID: owner, UserID: &assignee}
	if err := st.CreateResource(ctx, resource); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := st.GetResource(ctx, resource.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Title != "Projector" || got.Description != "room 2" {
		t.Fatalf("unexpected resource %+v", got)
	}
	if got.UserID == nil || *got.UserID != assignee {
		t.Fatalf("expected assignee %d, got %v", assignee, got.UserID)
	}

	title := "Projector HD"
	if err := st.UpdateResource(ctx, resource.ID, ResourceUpdate{Title: &title}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = st.GetResource(ctx, resource.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Projector HD" || got.Description != "room 2" {
		t.Fatalf("partial update changed wrong fields: %+v", got)
	}

	list, err := st.ListResources(ctx, owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(list))
	}
	list, err = st.ListResources(ctx, assignee)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected 0 resources for assignee as owner, got %d", len(list))
	}

	// Removing the assignee clears the reference.
	if err := st.DeleteUser(ctx, assignee); err != nil {
		t.Fatalf("delete assignee: %v", err)
	}
	got, err = st.GetResource(ctx, resource.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.UserID != nil {
		t.Fatalf("expected user_id cleared, got %d", *got.UserID)
	}

	if err := st.DeleteResource(ctx, resource.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.DeleteResource(ctx, resource.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateResourceValidation(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	if err := st.CreateResource(ctx, &models.Resource{OwnerID: 1}); err == nil {
		t.Fatal("expected error for missing title")
	}
	if err := st.CreateResource(ctx, &models.Resource{Title: "x"}); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected ErrOwnerRequired, got %v", err)
	}
	if err := st.CreateResource(ctx, &models.Resource{Title: "x", OwnerID: 999}); !errors.Is(err, ErrForeignKey) {
		t.Fatalf("expected ErrForeignKey, got %v", err)
	}
}

func TestDeleteOwnerCascadesResources(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	owner := testUser(t, st, "owner@example.com")

	resource := &models.Resource{Title: "Desk", OwnerID: owner}
	if err := st.CreateResource(ctx, resource); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := st.DeleteUser(ctx, owner); err != nil {
		t.Fatalf("delete owner: %v", err)
	}
	got, err := st.GetResource(ctx, resource.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected resource removed with owner, got %+v", got)
	}
}
