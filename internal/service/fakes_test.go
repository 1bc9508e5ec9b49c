package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formloom/formloom-backend/internal/repository"
	"github.com/formloom/formloom-backend/internal/types"
)

// In-memory fakes for the repository interfaces. They reproduce the sentinel
// behavior of the real repositories (ErrDuplicate, ErrNoRows, nil-on-miss).

type fakeUserRepo struct {
	users  map[string]*repository.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*repository.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *repository.User) error {
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*repository.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) add(id, email, name string) *repository.User {
	u := &repository.User{ID: id, Email: email, Name: name}
	f.users[id] = u
	return u
}

type fakeMemberRepo struct {
	// key workspaceID + "|" + userID
	members map[string]*repository.WorkspaceMember
	nextID  int
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*repository.WorkspaceMember)}
}

func memberKey(workspaceID, userID string) string {
	return workspaceID + "|" + userID
}

func (f *fakeMemberRepo) Add(_ context.Context, member *repository.WorkspaceMember) error {
	key := memberKey(member.WorkspaceID, member.UserID)
	if _, exists := f.members[key]; exists {
		return repository.ErrDuplicate
	}
	f.nextID++
	member.ID = fmt.Sprintf("member-%d", f.nextID)
	member.JoinedAt = time.Now()
	f.members[key] = member
	return nil
}

func (f *fakeMemberRepo) FindByWorkspace(_ context.Context, workspaceID string) ([]*repository.WorkspaceMember, error) {
	var out []*repository.WorkspaceMember
	for _, m := range f.members {
		if m.WorkspaceID == workspaceID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) GetRole(_ context.Context, workspaceID, userID string) (types.Role, bool, error) {
	m, ok := f.members[memberKey(workspaceID, userID)]
	if !ok {
		return "", false, nil
	}
	return m.Role, true, nil
}

func (f *fakeMemberRepo) Remove(_ context.Context, workspaceID, userID string) error {
	key := memberKey(workspaceID, userID)
	if _, ok := f.members[key]; !ok {
		return repository.ErrNoRows
	}
	delete(f.members, key)
	return nil
}

func (f *fakeMemberRepo) put(workspaceID, userID string, role types.Role) {
	f.members[memberKey(workspaceID, userID)] = &repository.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
}

type fakeWorkspaceRepo struct {
	workspaces map[string]*repository.Workspace
	memberRepo *fakeMemberRepo
	nextID     int
}

func newFakeWorkspaceRepo(members *fakeMemberRepo) *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{
		workspaces: make(map[string]*repository.Workspace),
		memberRepo: members,
	}
}

func (f *fakeWorkspaceRepo) CreateWithOwner(_ context.Context, workspace *repository.Workspace) error {
	f.nextID++
	workspace.ID = fmt.Sprintf("ws-%d", f.nextID)
	workspace.CreatedAt = time.Now()
	workspace.UpdatedAt = workspace.CreatedAt
	f.workspaces[workspace.ID] = workspace
	f.memberRepo.put(workspace.ID, workspace.OwnerID, types.RoleOwner)
	return nil
}

func (f *fakeWorkspaceRepo) FindByID(_ context.Context, id string) (*repository.Workspace, error) {
	return f.workspaces[id], nil
}

func (f *fakeWorkspaceRepo) FindOwnedByUser(_ context.Context, userID string) ([]*repository.Workspace, error) {
	var out []*repository.Workspace
	for _, ws := range f.workspaces {
		if ws.OwnerID == userID {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (f *fakeWorkspaceRepo) FindJoinedByUser(_ context.Context, userID string) ([]*repository.Workspace, error) {
	var out []*repository.Workspace
	for _, m := range f.memberRepo.members {
		if m.UserID == userID && m.Role != types.RoleOwner {
			if ws, ok := f.workspaces[m.WorkspaceID]; ok {
				out = append(out, ws)
			}
		}
	}
	return out, nil
}

func (f *fakeWorkspaceRepo) UpdateName(_ context.Context, id, name string) (*repository.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return nil, nil
	}
	ws.Name = name
	return ws, nil
}

func (f *fakeWorkspaceRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.workspaces[id]; !ok {
		return repository.ErrNoRows
	}
	delete(f.workspaces, id)
	return nil
}

type fakeInvitationRepo struct {
	// keyed by token
	invitations map[string]*repository.Invitation
	memberRepo  *fakeMemberRepo
	nextID      int
}

func newFakeInvitationRepo(members *fakeMemberRepo) *fakeInvitationRepo {
	return &fakeInvitationRepo{
		invitations: make(map[string]*repository.Invitation),
		memberRepo:  members,
	}
}

func (f *fakeInvitationRepo) Create(_ context.Context, invitation *repository.Invitation) error {
	for _, inv := range f.invitations {
		if inv.Email == invitation.Email && inv.WorkspaceID == invitation.WorkspaceID &&
			inv.Status == types.InvitationPending && inv.ExpiresAt.After(time.Now()) {
			return repository.ErrNoRows
		}
	}
	f.nextID++
	invitation.ID = fmt.Sprintf("inv-%d", f.nextID)
	invitation.CreatedAt = time.Now()
	f.invitations[invitation.Token] = invitation
	return nil
}

func (f *fakeInvitationRepo) FindByToken(_ context.Context, token string) (*repository.Invitation, error) {
	return f.invitations[token], nil
}

func (f *fakeInvitationRepo) FindPendingForUser(_ context.Context, userID, email string) ([]*repository.Invitation, error) {
	var out []*repository.Invitation
	for _, inv := range f.invitations {
		if inv.Status != types.InvitationPending || !inv.ExpiresAt.After(time.Now()) {
			continue
		}
		if (inv.UserID != nil && *inv.UserID == userID) || inv.Email == email {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f *fakeInvitationRepo) Accept(ctx context.Context, token, accepterID string) (*repository.WorkspaceMember, error) {
	inv, ok := f.invitations[token]
	if !ok || inv.Status != types.InvitationPending || !inv.ExpiresAt.After(time.Now()) {
		return nil, repository.ErrNoRows
	}
	if inv.UserID != nil && *inv.UserID != accepterID {
		return nil, repository.ErrNoRows
	}

	member := &repository.WorkspaceMember{
		WorkspaceID: inv.WorkspaceID,
		UserID:      accepterID,
		Role:        inv.Role,
	}
	if err := f.memberRepo.Add(ctx, member); err != nil {
		return nil, err
	}
	inv.Status = types.InvitationAccepted
	return member, nil
}

func (f *fakeInvitationRepo) Reject(_ context.Context, token, rejecterID, rejecterEmail string) (*repository.Invitation, error) {
	inv, ok := f.invitations[token]
	if !ok {
		return nil, repository.ErrNoRows
	}
	authorized := (inv.UserID != nil && *inv.UserID == rejecterID) || inv.Email == rejecterEmail
	if inv.Status != types.InvitationPending || !inv.ExpiresAt.After(time.Now()) || !authorized {
		return inv, repository.ErrNoRows
	}
	inv.Status = types.InvitationRejected
	inv.ExpiresAt = time.Now()
	return nil, nil
}

type fakeFormRepo struct {
	forms  map[string]*repository.Form
	pages  map[string][]*repository.FormPage
	nextID int
}

func newFakeFormRepo() *fakeFormRepo {
	return &fakeFormRepo{
		forms: make(map[string]*repository.Form),
		pages: make(map[string][]*repository.FormPage),
	}
}

func (f *fakeFormRepo) CreateWithFirstPage(_ context.Context, form *repository.Form) error {
	f.nextID++
	form.ID = fmt.Sprintf("form-%d", f.nextID)
	form.CreatedAt = time.Now()
	form.UpdatedAt = form.CreatedAt
	f.forms[form.ID] = form
	f.pages[form.ID] = []*repository.FormPage{{
		ID:     form.ID + "-p1",
		FormID: form.ID,
		Page:   1,
	}}
	return nil
}

func (f *fakeFormRepo) FindByID(_ context.Context, id string) (*repository.Form, error) {
	return f.forms[id], nil
}

func (f *fakeFormRepo) FindByWorkspace(_ context.Context, workspaceID string) ([]*repository.Form, error) {
	var out []*repository.Form
	for _, form := range f.forms {
		if form.WorkspaceID == workspaceID {
			out = append(out, form)
		}
	}
	return out, nil
}

func (f *fakeFormRepo) SetStatus(_ context.Context, id string, status bool) (*repository.Form, error) {
	form, ok := f.forms[id]
	if !ok {
		return nil, nil
	}
	form.Status = status
	return form, nil
}

func (f *fakeFormRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.forms[id]; !ok {
		return repository.ErrNoRows
	}
	delete(f.forms, id)
	delete(f.pages, id)
	return nil
}

func (f *fakeFormRepo) FindPage(_ context.Context, formID string, page int) (*repository.FormPage, error) {
	for _, p := range f.pages[formID] {
		if p.Page == page {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeFormRepo) FindPages(_ context.Context, formID string) ([]*repository.FormPage, error) {
	return f.pages[formID], nil
}

func (f *fakeFormRepo) CountPages(_ context.Context, formID string) (int, error) {
	return len(f.pages[formID]), nil
}

func (f *fakeFormRepo) MaxPage(_ context.Context, formID string) (int, error) {
	max := 0
	for _, p := range f.pages[formID] {
		if p.Page > max {
			max = p.Page
		}
	}
	return max, nil
}

func (f *fakeFormRepo) UpdatePageContent(_ context.Context, pageID, formID string, page int, content json.RawMessage) (*repository.FormPage, error) {
	for _, p := range f.pages[formID] {
		if p.ID == pageID && p.Page == page {
			p.Content = content
			return p, nil
		}
	}
	return nil, repository.ErrNoRows
}

func (f *fakeFormRepo) CreateNextPage(_ context.Context, formID string, page int) (*repository.FormPage, error) {
	for _, p := range f.pages[formID] {
		if p.Page == page {
			return nil, repository.ErrDuplicate
		}
	}
	created := &repository.FormPage{
		ID:     fmt.Sprintf("%s-p%d", formID, page),
		FormID: formID,
		Page:   page,
	}
	f.pages[formID] = append(f.pages[formID], created)
	return created, nil
}

type fakeSubmissionRepo struct {
	submissions []*repository.Submission
	nextID      int
}

func (f *fakeSubmissionRepo) Create(_ context.Context, submission *repository.Submission) error {
	f.nextID++
	submission.ID = fmt.Sprintf("sub-%d", f.nextID)
	submission.CreatedAt = time.Now()
	f.submissions = append(f.submissions, submission)
	return nil
}

func (f *fakeSubmissionRepo) FindByForm(_ context.Context, formID string) ([]*repository.Submission, error) {
	var out []*repository.Submission
	for _, s := range f.submissions {
		if s.FormID == formID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) CountByForm(_ context.Context, formID string) (int64, error) {
	var n int64
	for _, s := range f.submissions {
		if s.FormID == formID {
			n++
		}
	}
	return n, nil
}

type fakeAssetRepo struct {
	assets []*repository.WorkspaceAsset
	nextID int
}

func (f *fakeAssetRepo) AddWithinLimit(_ context.Context, asset *repository.WorkspaceAsset) error {
	count := 0
	for _, a := range f.assets {
		if a.WorkspaceID == asset.WorkspaceID {
			count++
		}
	}
	if count >= types.MaxWorkspaceAssets {
		return repository.ErrNoRows
	}
	f.nextID++
	asset.ID = fmt.Sprintf("asset-%d", f.nextID)
	asset.CreatedAt = time.Now()
	f.assets = append(f.assets, asset)
	return nil
}

func (f *fakeAssetRepo) FindByID(_ context.Context, id string) (*repository.WorkspaceAsset, error) {
	for _, a := range f.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAssetRepo) FindByWorkspace(_ context.Context, workspaceID string) ([]*repository.WorkspaceAsset, error) {
	var out []*repository.WorkspaceAsset
	for _, a := range f.assets {
		if a.WorkspaceID == workspaceID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssetRepo) Delete(_ context.Context, id string) error {
	for i, a := range f.assets {
		if a.ID == id {
			f.assets = append(f.assets[:i], f.assets[i+1:]...)
			return nil
		}
	}
	return repository.ErrNoRows
}

type fakeAnalyticsRepo struct {
	summaries map[string]*repository.AnalyticsSummary
}

func newFakeAnalyticsRepo() *fakeAnalyticsRepo {
	return &fakeAnalyticsRepo{summaries: make(map[string]*repository.AnalyticsSummary)}
}

func (f *fakeAnalyticsRepo) TrackVisit(_ context.Context, formID string, device types.DeviceType) error {
	summary, ok := f.summaries[formID]
	if !ok {
		summary = &repository.AnalyticsSummary{FormID: formID}
		f.summaries[formID] = summary
	}
	summary.TotalVisits++
	if device == types.DeviceMobile {
		summary.MobileVisits++
	} else {
		summary.DesktopVisits++
	}
	return nil
}

func (f *fakeAnalyticsRepo) GetSummary(_ context.Context, formID string) (*repository.AnalyticsSummary, error) {
	return f.summaries[formID], nil
}

func (f *fakeAnalyticsRepo) ReconcileSummaries(_ context.Context) (int64, error) {
	return int64(len(f.summaries)), nil
}

// Collaborator fakes.

type fakeBroadcaster struct {
	events []string
}

func (f *fakeBroadcaster) BroadcastToWorkspace(workspaceID, event string, _ interface{}) {
	f.events = append(f.events, workspaceID+":"+event)
}

type fakeMediaStore struct {
	destroyErr error
	destroyed  []string
	tagDeletes []string
}

func (f *fakeMediaStore) Destroy(_ context.Context, publicID string) error {
	if f.destroyErr != nil {
		return f.destroyErr
	}
	f.destroyed = append(f.destroyed, publicID)
	return nil
}

func (f *fakeMediaStore) DeleteByTag(_ context.Context, tag string) error {
	f.tagDeletes = append(f.tagDeletes, tag)
	return nil
}

type fakeCache struct {
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	data, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	return nil
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	delete(f.entries, key)
	return nil
}
