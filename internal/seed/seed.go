// Package seed provisions demo data for local development. Never runs in
// production.
package seed

import (
	"context"
	"log"

	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/service"
	"github.com/formloom/formloom-backend/internal/types"
)

const (
	demoEmail    = "demo@formloom.app"
	demoPassword = "demo-password"
)

// Run creates a demo account with a workspace and a published form. Skips
// silently when the account already exists so restarts stay idempotent.
func Run(ctx context.Context, repos *repository.Repositories) error {
	existing, err := repos.UserRepo.FindByEmail(ctx, demoEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hashed, err := service.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	user := &repository.User{
		Email:    demoEmail,
		Name:     "Demo User",
		Password: hashed,
	}
	if err := repos.UserRepo.Create(ctx, user); err != nil {
		return err
	}

	workspace := &repository.Workspace{Name: "demo workspace", OwnerID: user.ID}
	if err := repos.WorkspaceRepo.CreateWithOwner(ctx, workspace); err != nil {
		return err
	}

	description := "Tell us what you think of Formloom"
	form := &repository.Form{
		WorkspaceID: workspace.ID,
		Title:       "Feedback form",
		Description: &description,
		Theme:       types.ThemeRounded,
	}
	if err := repos.FormRepo.CreateWithFirstPage(ctx, form); err != nil {
		return err
	}
	if _, err := repos.FormRepo.SetStatus(ctx, form.ID, true); err != nil {
		return err
	}

	log.Printf("[SEED] Demo data created (%s / %s)", demoEmail, demoPassword)
	return nil
}
