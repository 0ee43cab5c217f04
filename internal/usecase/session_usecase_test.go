package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"agence-dashboard/internal/domain"
	"agence-dashboard/internal/repository/memory"
	"agence-dashboard/internal/usecase"
	"agence-dashboard/pkg/utils"
)

func newSessionUsecase(gw *fakeGateway) (*usecase.SessionUsecase, *usecase.WorkspaceManager) {
	c := testCache()
	cfg := testConfig()
	workspaces := usecase.NewWorkspaceManager(gw, c, cfg)
	return usecase.NewSessionUsecase(memory.NewSessionRepository(c), workspaces, cfg.SessionTTL), workspaces
}

func TestSessionLifecycle(t *testing.T) {
	utils.SetSecret("test-secret")
	gw := newFakeGateway()
	gw.base = []domain.SimpleTariff{{Indice: "1", Zones: zoneRows(1, 100)}}
	sessions, _ := newSessionUsecase(gw)
	ctx := context.Background()

	sess, token, err := sessions.Open(ctx, usecase.OpenSessionInput{Token: "api-token", UserID: "u1", AgencyID: "12", Role: "AGENCE"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.Role != domain.RoleAgency || token == "" {
		t.Fatalf("session = %+v, token = %q", sess, token)
	}

	claims, err := utils.ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT: %v", err)
	}
	resolved, err := sessions.Resolve(ctx, claims)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if resolved.Token != "api-token" || resolved.AgencyID != "12" {
		t.Errorf("resolved = %+v", resolved)
	}

	ws := sessions.Workspace(resolved)
	if _, err := ws.LoadBaseTariffs(ctx); err != nil {
		t.Fatalf("LoadBaseTariffs: %v", err)
	}
	if sessions.Workspace(resolved) != ws {
		t.Errorf("expected the same workspace for the same session")
	}

	if err := sessions.Close(ctx, resolved); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(ws.Snapshot().BaseTariffs) != 0 {
		t.Errorf("workspace must be reset on logout")
	}
	if _, err := sessions.Resolve(ctx, claims); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession after close, got %v", err)
	}
}

func TestOpenSessionValidation(t *testing.T) {
	sessions, _ := newSessionUsecase(newFakeGateway())
	ctx := context.Background()

	cases := []usecase.OpenSessionInput{
		{AgencyID: "1"},
		{Token: "t"},
		{Token: "t", AgencyID: "1", Role: "superuser"},
	}
	for _, in := range cases {
		if _, _, err := sessions.Open(ctx, in); !domain.IsValidation(err) {
			t.Errorf("%+v: expected validation error, got %v", in, err)
		}
	}
}

func TestResolveUnknownSession(t *testing.T) {
	sessions, _ := newSessionUsecase(newFakeGateway())
	_, err := sessions.Resolve(context.Background(), &utils.Claims{SessionID: "not-a-uuid"})
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestWorkspaceIdleExpiry(t *testing.T) {
	gw := newFakeGateway()
	cfg := testConfig()
	cfg.WorkspaceIdleTTL = 20 * time.Millisecond
	workspaces := usecase.NewWorkspaceManager(gw, testCache(), cfg)

	sess := &domain.Session{Token: "t"}
	first := workspaces.Get(sess)
	time.Sleep(40 * time.Millisecond)
	if workspaces.Get(sess) == first {
		t.Errorf("expected a fresh workspace after the idle TTL")
	}
}
