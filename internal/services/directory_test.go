package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/labebook/backend/internal/models"
)

func TestGetUserByEmail(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	created := createUser(t, db, "sarah")

	user, err := directory.GetUserByEmail("sarah@lab.example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.ID != created.ID {
		t.Errorf("ID = %d, expected %d", user.ID, created.ID)
	}

	// Matching is exact, not case-folded or prefixed.
	if _, err := directory.GetUserByEmail("sarah"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("partial email should not match, got %v", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	if _, err := directory.GetUserByID(999); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected record not found, got %v", err)
	}
}

func TestGetTeamByID(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	pi := createUser(t, db, "sarah")
	collab := createUser(t, db, "miguel")
	team := createTeam(t, db, "Protein Lab", pi.ID)
	addMember(t, db, team.ID, pi.ID, models.RolePI)
	addMember(t, db, team.ID, collab.ID, models.RoleCollaborator)
	db.Create(&models.TeamInvitation{
		Token: "tok", TeamID: team.ID, InvitedEmail: "aisha@lab.example.com",
		InvitedBy: pi.ID, Role: models.RoleCollaborator, Status: models.InvitationPending,
	})

	got, err := directory.GetTeamByID(team.ID)
	if err != nil {
		t.Fatalf("GetTeamByID failed: %v", err)
	}
	if len(got.Members) != 2 {
		t.Errorf("expected 2 members, got %d", len(got.Members))
	}
	if got.Members[0].User == nil {
		t.Error("member users should be preloaded")
	}
	if len(got.Invitations) != 1 {
		t.Errorf("expected 1 invitation, got %d", len(got.Invitations))
	}
}

func TestGetUserTeams(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	user := createUser(t, db, "sarah")
	other := createUser(t, db, "miguel")
	a := createTeam(t, db, "Lab A", user.ID)
	b := createTeam(t, db, "Lab B", user.ID)
	c := createTeam(t, db, "Lab C", other.ID)
	addMember(t, db, a.ID, user.ID, models.RolePI)
	addMember(t, db, b.ID, user.ID, models.RoleCollaborator)
	addMember(t, db, c.ID, other.ID, models.RolePI)

	teams, err := directory.GetUserTeams(user.ID)
	if err != nil {
		t.Fatalf("GetUserTeams failed: %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("expected 2 teams, got %d", len(teams))
	}
	if teams[0].ID != a.ID || teams[1].ID != b.ID {
		t.Error("teams should come back in creation order")
	}
}

func TestGetUserPendingInvitations(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	pi := createUser(t, db, "sarah")
	a := createTeam(t, db, "Lab A", pi.ID)
	b := createTeam(t, db, "Lab B", pi.ID)

	mk := func(teamID uint, email, status string) {
		db.Create(&models.TeamInvitation{
			Token: email + status, TeamID: teamID, InvitedEmail: email,
			InvitedBy: pi.ID, Role: models.RoleCollaborator, Status: status,
		})
	}
	mk(a.ID, "miguel@lab.example.com", models.InvitationPending)
	mk(b.ID, "miguel@lab.example.com", models.InvitationPending)
	mk(a.ID, "miguel@lab.example.com", models.InvitationDeclined)
	mk(a.ID, "aisha@lab.example.com", models.InvitationPending)

	invitations, err := directory.GetUserPendingInvitations("miguel@lab.example.com")
	if err != nil {
		t.Fatalf("GetUserPendingInvitations failed: %v", err)
	}
	if len(invitations) != 2 {
		t.Fatalf("expected 2 pending invitations, got %d", len(invitations))
	}
	if invitations[0].TeamID != a.ID || invitations[1].TeamID != b.ID {
		t.Error("invitations should be ordered by team")
	}
	if invitations[0].Team == nil || invitations[0].Team.Name != "Lab A" {
		t.Error("team should be preloaded")
	}
}

// Invitations are addressed to emails, not accounts; a recipient with no
// user record still has pending invitations.
func TestGetUserPendingInvitations_UnregisteredEmail(t *testing.T) {
	db := setupTestDB(t)
	directory := NewDirectoryService(db)

	pi := createUser(t, db, "sarah")
	team := createTeam(t, db, "Lab A", pi.ID)
	db.Create(&models.TeamInvitation{
		Token: "tok", TeamID: team.ID, InvitedEmail: "newhire@elsewhere.org",
		InvitedBy: pi.ID, Role: models.RoleCollaborator, Status: models.InvitationPending,
	})

	invitations, err := directory.GetUserPendingInvitations("newhire@elsewhere.org")
	if err != nil {
		t.Fatalf("GetUserPendingInvitations failed: %v", err)
	}
	if len(invitations) != 1 {
		t.Errorf("expected 1 invitation, got %d", len(invitations))
	}
}
