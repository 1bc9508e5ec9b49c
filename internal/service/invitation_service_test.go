package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/formloom/formloom-backend/internal/apperr"
	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

type invitationFixture struct {
	svc         *InvitationService
	users       *fakeUserRepo
	members     *fakeMemberRepo
	invitations *fakeInvitationRepo
}

func newInvitationFixture() *invitationFixture {
	users := newFakeUserRepo()
	members := newFakeMemberRepo()
	invitations := newFakeInvitationRepo(members)
	workspaces := newFakeWorkspaceRepo(members)
	permission := NewPermissionService(members, newFakeFormRepo())

	return &invitationFixture{
		svc:         NewInvitationService(invitations, members, users, workspaces, permission, nil),
		users:       users,
		members:     members,
		invitations: invitations,
	}
}

func (f *invitationFixture) pendingInvitation(userID, email string, expiresIn time.Duration) *repository.Invitation {
	inv := &repository.Invitation{
		Email:       email,
		WorkspaceID: "ws-1",
		Role:        types.RoleEditor,
		Token:       "token-" + email,
		Status:      types.InvitationPending,
		ExpiresAt:   time.Now().Add(expiresIn),
	}
	if userID != "" {
		inv.UserID = &userID
	}
	f.invitations.invitations[inv.Token] = inv
	return inv
}

func TestInvite_RequiresAdmin(t *testing.T) {
	f := newInvitationFixture()
	f.members.put("ws-1", "editor", types.RoleEditor)

	_, err := f.svc.Invite(context.Background(), "editor", "ws-1", "x@y.com", "VIEWER")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestInvite_ValidationAndConflicts(t *testing.T) {
	f := newInvitationFixture()
	f.members.put("ws-1", "admin", types.RoleAdmin)
	f.users.add("admin", "admin@y.com", "Admin")
	ctx := context.Background()

	// OWNER may not be granted by invitation
	_, err := f.svc.Invite(ctx, "admin", "ws-1", "x@y.com", "OWNER")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	// invitee must already have an account
	_, err = f.svc.Invite(ctx, "admin", "ws-1", "ghost@y.com", "VIEWER")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	// no self invite
	_, err = f.svc.Invite(ctx, "admin", "ws-1", "admin@y.com", "VIEWER")
	assert.Equal(t, http.StatusBadRequest, apperr.Status(err))

	// already a member
	f.users.add("bob", "bob@y.com", "Bob")
	f.members.put("ws-1", "bob", types.RoleViewer)
	_, err = f.svc.Invite(ctx, "admin", "ws-1", "bob@y.com", "VIEWER")
	assert.Equal(t, http.StatusConflict, apperr.Status(err))

	// pending unexpired invite already out
	f.users.add("carol", "carol@y.com", "Carol")
	first, err := f.svc.Invite(ctx, "admin", "ws-1", "carol@y.com", "EDITOR")
	require.NoError(t, err)
	assert.Equal(t, types.InvitationPending, first.Status)
	assert.NotEmpty(t, first.Token)

	_, err = f.svc.Invite(ctx, "admin", "ws-1", "carol@y.com", "EDITOR")
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestInvite_ExpiredPendingDoesNotBlock(t *testing.T) {
	f := newInvitationFixture()
	f.members.put("ws-1", "admin", types.RoleAdmin)
	f.users.add("admin", "admin@y.com", "Admin")
	f.users.add("carol", "carol@y.com", "Carol")

	// an expired PENDING row is inert history, not a live invitation
	f.pendingInvitation("carol", "carol@y.com", -time.Hour)

	inv, err := f.svc.Invite(context.Background(), "admin", "ws-1", "carol@y.com", "EDITOR")
	require.NoError(t, err)
	assert.Equal(t, types.InvitationPending, inv.Status)
}

func TestAccept_Success(t *testing.T) {
	f := newInvitationFixture()
	f.pendingInvitation("carol", "carol@y.com", time.Hour)

	member, err := f.svc.Accept(context.Background(), "carol", "token-carol@y.com")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", member.WorkspaceID)
	assert.Equal(t, types.RoleEditor, member.Role)

	// second accept of the same token collapses to Gone
	_, err = f.svc.Accept(context.Background(), "carol", "token-carol@y.com")
	assert.Equal(t, http.StatusGone, apperr.Status(err))
}

func TestAccept_WrongUserForbidden(t *testing.T) {
	f := newInvitationFixture()
	f.pendingInvitation("carol", "carol@y.com", time.Hour)

	_, err := f.svc.Accept(context.Background(), "mallory", "token-carol@y.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestAccept_ExpiredOrUnknownGone(t *testing.T) {
	f := newInvitationFixture()
	f.pendingInvitation("carol", "carol@y.com", -time.Hour)
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, "carol", "token-carol@y.com")
	assert.Equal(t, http.StatusGone, apperr.Status(err))

	_, err = f.svc.Accept(ctx, "carol", "no-such-token")
	assert.Equal(t, http.StatusGone, apperr.Status(err))
}

func TestAccept_AlreadyMemberConflict(t *testing.T) {
	f := newInvitationFixture()
	f.members.put("ws-1", "carol", types.RoleViewer)
	f.pendingInvitation("carol", "carol@y.com", time.Hour)

	_, err := f.svc.Accept(context.Background(), "carol", "token-carol@y.com")
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))
}

func TestReject_DiagnosisPriority(t *testing.T) {
	f := newInvitationFixture()
	ctx := context.Background()

	// unknown token
	err := f.svc.Reject(ctx, "carol", "carol@y.com", "no-such-token")
	assert.Equal(t, http.StatusNotFound, apperr.Status(err))

	// already processed beats expired
	processed := f.pendingInvitation("carol", "carol@y.com", -time.Hour)
	processed.Status = types.InvitationAccepted
	err = f.svc.Reject(ctx, "carol", "carol@y.com", processed.Token)
	assert.Equal(t, http.StatusConflict, apperr.Status(err))

	// expired beats wrong user
	expired := f.pendingInvitation("dave", "dave@y.com", -time.Hour)
	err = f.svc.Reject(ctx, "mallory", "mallory@y.com", expired.Token)
	assert.Equal(t, http.StatusGone, apperr.Status(err))

	// live invitation, wrong user
	live := f.pendingInvitation("erin", "erin@y.com", time.Hour)
	err = f.svc.Reject(ctx, "mallory", "mallory@y.com", live.Token)
	assert.Equal(t, http.StatusForbidden, apperr.Status(err))
}

func TestReject_ByEmailMatch(t *testing.T) {
	f := newInvitationFixture()
	inv := f.pendingInvitation("", "carol@y.com", time.Hour)

	err := f.svc.Reject(context.Background(), "some-id", "carol@y.com", inv.Token)
	require.NoError(t, err)
	assert.Equal(t, types.InvitationRejected, inv.Status)
	// rejection forces expiry so the row is inert immediately
	assert.False(t, inv.ExpiresAt.After(time.Now().Add(time.Second)))
}

func TestListMine_MatchesUserIDOrEmail(t *testing.T) {
	f := newInvitationFixture()
	f.pendingInvitation("carol", "carol@y.com", time.Hour)
	f.pendingInvitation("", "carol-old@y.com", time.Hour)
	accepted := f.pendingInvitation("carol", "carol2@y.com", time.Hour)
	accepted.Status = types.InvitationAccepted

	got, err := f.svc.ListMine(context.Background(), "carol", "carol-old@y.com")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListMine_ExcludesExpired(t *testing.T) {
	f := newInvitationFixture()
	live := f.pendingInvitation("carol", "carol@y.com", time.Hour)
	f.pendingInvitation("carol", "carol-stale@y.com", -time.Hour)

	got, err := f.svc.ListMine(context.Background(), "carol", "carol@y.com")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, live.Token, got[0].Token)
}
