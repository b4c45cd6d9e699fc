package services

import (
	"errors"
	"testing"

	"github.com/labebook/backend/internal/models"
	"github.com/labebook/backend/pkg/response"
)

// recordingQueue captures enqueued tasks for inspection.
type recordingQueue struct {
	tasks []*InvitationEmailTask
}

func (q *recordingQueue) Enqueue(task *InvitationEmailTask) error {
	q.tasks = append(q.tasks, task)
	return nil
}

func (q *recordingQueue) IsAsync() bool { return false }
func (q *recordingQueue) Close() error  { return nil }

func TestInvite(t *testing.T) {
	db := setupTestDB(t)
	queue := &recordingQueue{}
	invitations := NewInvitationService(db, queue)

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)
	sess := &Session{UserID: pi.ID, TeamID: team.ID}

	inv, err := invitations.Invite(sess, team.ID, "miguel@lab.example.com", models.RoleCollaborator, "join us")
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if inv.Status != models.InvitationPending {
		t.Errorf("Status = %q, expected pending", inv.Status)
	}
	if inv.Token == "" {
		t.Error("invitation should carry a token")
	}
	if inv.InvitedBy != pi.ID {
		t.Errorf("InvitedBy = %d, expected %d", inv.InvitedBy, pi.ID)
	}

	if len(queue.tasks) != 1 {
		t.Fatalf("expected 1 notification task, got %d", len(queue.tasks))
	}
	task := queue.tasks[0]
	if task.InvitedEmail != "miguel@lab.example.com" || task.TeamName != "Protein Lab" || task.Resend {
		t.Errorf("unexpected task: %+v", task)
	}
}

func TestInvite_InvalidRole(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	sess := &Session{UserID: pi.ID, TeamID: team.ID}

	_, err := invitations.Invite(sess, team.ID, "x@lab.example.com", "Admin", "")
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 400 {
		t.Errorf("expected bad request, got %v", err)
	}
}

func TestInvite_TeamNotFound(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	user := createUser(t, db, "sarah")
	sess := &Session{UserID: user.ID, TeamID: 1}

	_, err := invitations.Invite(sess, 999, "x@lab.example.com", models.RoleCollaborator, "")
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("expected not found, got %v", err)
	}
}

// Duplicate outstanding invitations to the same email are allowed.
func TestInvite_DuplicatesAllowed(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	sess := &Session{UserID: pi.ID, TeamID: team.ID}

	for i := 0; i < 2; i++ {
		if _, err := invitations.Invite(sess, team.ID, "miguel@lab.example.com", models.RoleCollaborator, ""); err != nil {
			t.Fatalf("Invite #%d failed: %v", i+1, err)
		}
	}

	var count int64
	db.Model(&models.TeamInvitation{}).
		Where("team_id = ? AND invited_email = ?", team.ID, "miguel@lab.example.com").
		Count(&count)
	if count != 2 {
		t.Errorf("expected 2 pending invitations, got %d", count)
	}
}

func TestAccept(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	invitee := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, invitee.Email, models.RolePI, "")

	accepted, err := invitations.Accept(&Session{UserID: invitee.ID}, inv.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if accepted.Status != models.InvitationAccepted {
		t.Errorf("Status = %q, expected accepted", accepted.Status)
	}

	// Membership is created with the invitation's role.
	var member models.TeamMember
	if err := db.Where("team_id = ? AND user_id = ?", team.ID, invitee.ID).First(&member).Error; err != nil {
		t.Fatalf("membership should exist: %v", err)
	}
	if member.Role != models.RolePI {
		t.Errorf("Role = %q, expected the invitation's role", member.Role)
	}
}

// Accepting is not restricted to the invited email address: any
// authenticated user who can reach a pending invitation may accept it.
func TestAccept_EmailNotChecked(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	stranger := createUser(t, db, "aisha")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, "miguel@lab.example.com", models.RoleCollaborator, "")

	if _, err := invitations.Accept(&Session{UserID: stranger.ID}, inv.ID); err != nil {
		t.Fatalf("Accept by a different user should succeed: %v", err)
	}

	var count int64
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, stranger.ID).Count(&count)
	if count != 1 {
		t.Error("accepting user should have joined the team")
	}
}

func TestAccept_AlreadyMember(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	invitee := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)
	addMember(t, db, team.ID, invitee.ID, models.RoleCollaborator)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, invitee.Email, models.RolePI, "")

	if _, err := invitations.Accept(&Session{UserID: invitee.ID}, inv.ID); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	// The existing membership is kept as-is, not duplicated or upgraded.
	var members []models.TeamMember
	db.Where("team_id = ? AND user_id = ?", team.ID, invitee.ID).Find(&members)
	if len(members) != 1 {
		t.Fatalf("expected 1 membership, got %d", len(members))
	}
	if members[0].Role != models.RoleCollaborator {
		t.Errorf("existing role should be untouched, got %q", members[0].Role)
	}
}

func TestAccept_Resolved(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	invitee := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, invitee.Email, models.RoleCollaborator, "")
	invitations.Decline(&Session{UserID: invitee.ID}, inv.ID)

	_, err := invitations.Accept(&Session{UserID: invitee.ID}, inv.ID)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 409 {
		t.Errorf("accepting a resolved invitation should conflict, got %v", err)
	}
}

func TestDecline(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	invitee := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, invitee.Email, models.RoleCollaborator, "")

	declined, err := invitations.Decline(&Session{UserID: invitee.ID}, inv.ID)
	if err != nil {
		t.Fatalf("Decline failed: %v", err)
	}
	if declined.Status != models.InvitationDeclined {
		t.Errorf("Status = %q, expected declined", declined.Status)
	}

	// Declining never touches membership.
	var count int64
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, invitee.ID).Count(&count)
	if count != 0 {
		t.Error("declined invitee should not be a member")
	}

	// Declined is terminal.
	if _, err := invitations.Decline(&Session{UserID: invitee.ID}, inv.ID); err == nil {
		t.Error("declining a resolved invitation should conflict")
	}
}

func TestCancel(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, "miguel@lab.example.com", models.RoleCollaborator, "")

	if err := invitations.Cancel(inv.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	var count int64
	db.Model(&models.TeamInvitation{}).Where("id = ?", inv.ID).Count(&count)
	if count != 0 {
		t.Error("cancelled invitation should be deleted outright")
	}

	// Cancelling again, or cancelling a never-existing id, is a no-op.
	if err := invitations.Cancel(inv.ID); err != nil {
		t.Errorf("repeated Cancel should be idempotent, got %v", err)
	}
	if err := invitations.Cancel(999); err != nil {
		t.Errorf("Cancel of unknown id should be a no-op, got %v", err)
	}
}

// Cancel removes the row regardless of status, accepted included.
func TestCancel_ResolvedInvitation(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	pi := createUser(t, db, "sarah")
	invitee := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, invitee.Email, models.RoleCollaborator, "")
	invitations.Accept(&Session{UserID: invitee.ID}, inv.ID)

	if err := invitations.Cancel(inv.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	var invCount, memberCount int64
	db.Model(&models.TeamInvitation{}).Where("id = ?", inv.ID).Count(&invCount)
	db.Model(&models.TeamMember{}).Where("team_id = ? AND user_id = ?", team.ID, invitee.ID).Count(&memberCount)
	if invCount != 0 {
		t.Error("accepted invitation should still be removable")
	}
	if memberCount != 1 {
		t.Error("cancelling an accepted invitation must not revoke membership")
	}
}

func TestResend(t *testing.T) {
	db := setupTestDB(t)
	queue := &recordingQueue{}
	invitations := NewInvitationService(db, queue)

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)

	inv, _ := invitations.Invite(&Session{UserID: pi.ID, TeamID: team.ID}, team.ID, "miguel@lab.example.com", models.RoleCollaborator, "")

	if err := invitations.Resend(inv.ID); err != nil {
		t.Fatalf("Resend failed: %v", err)
	}

	if len(queue.tasks) != 2 {
		t.Fatalf("expected 2 notification tasks, got %d", len(queue.tasks))
	}
	if !queue.tasks[1].Resend {
		t.Error("second task should be flagged as resend")
	}

	// Resend never changes the invitation itself.
	var got models.TeamInvitation
	db.First(&got, inv.ID)
	if got.Status != models.InvitationPending {
		t.Errorf("Status = %q, expected pending", got.Status)
	}
}

func TestResend_NotFound(t *testing.T) {
	db := setupTestDB(t)
	invitations := NewInvitationService(db, &recordingQueue{})

	err := invitations.Resend(999)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("expected not found, got %v", err)
	}
}
