package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/custodia-labs/audit-console/internal/core/domain"
	"github.com/custodia-labs/audit-console/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/audit-console/internal/core/ports/driving"
)

// sessionWorld is the per-scenario state of the lifecycle features
type sessionWorld struct {
	clock     *mocks.FakeClock
	repo      *mocks.MockSessionRepository
	api       *mocks.MockAuthAPI
	notifier  *mocks.RecordingNotifier
	navigator *mocks.RecordingNavigator
	signal    *UnauthorizedSignal
	mgr       *SessionManager
	accounts  driving.AccountService

	signInErr error
}

func (w *sessionWorld) runningManager() error {
	w.clock = mocks.NewFakeClock(sessionEpoch)
	w.repo = mocks.NewMockSessionRepository()
	w.api = mocks.NewMockAuthAPI()
	w.notifier = mocks.NewRecordingNotifier()
	w.navigator = mocks.NewRecordingNavigator()
	w.signal = NewUnauthorizedSignal(UnauthorizedSignalConfig{Clock: w.clock})

	mgr, err := NewSessionManager(SessionManagerConfig{
		Repository: w.repo,
		Clock:      w.clock,
		Signal:     w.signal,
		AuthAPI:    w.api,
		Notifier:   w.notifier,
		Navigator:  w.navigator,
	})
	if err != nil {
		return err
	}
	w.mgr = mgr
	w.accounts = NewAccountService(w.api, mgr, nil)
	return mgr.Start(context.Background())
}

func (w *sessionWorld) loggedIn(email string) error {
	user := domain.User{ID: "u-1", Email: email, Role: domain.RoleCompany}
	return w.mgr.Login(context.Background(), user, "tok-"+email)
}

func (w *sessionWorld) concurrentLogouts(n int) error {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.mgr.Logout(context.Background(), domain.MsgSessionExpired, true)
		}()
	}
	wg.Wait()
	return nil
}

func (w *sessionWorld) unauthorizedAnswers(n int) error {
	for i := 0; i < n; i++ {
		w.signal.Raise("")
	}
	w.mgr.pending.Wait()
	return nil
}

func (w *sessionWorld) secondsPass(n int) error {
	w.clock.Advance(time.Duration(n) * time.Second)
	return nil
}

func (w *sessionWorld) minutesPass(n int) error {
	w.clock.Advance(time.Duration(n) * time.Minute)
	return nil
}

func (w *sessionWorld) activeFor(hours int) error {
	for i := 0; i < hours*2; i++ {
		w.clock.Advance(30 * time.Minute)
		w.mgr.RecordActivity(domain.ActivityClick)
		if !w.mgr.IsAuthenticated() {
			return fmt.Errorf("logged out after %d half hours", i+1)
		}
	}
	return nil
}

func (w *sessionWorld) sessionExpires() error {
	return w.mgr.Logout(context.Background(), domain.MsgSessionExpired, true)
}

func (w *sessionWorld) backendLogoutCalls(n int) error {
	if got := w.api.Calls("Logout"); got != n {
		return fmt.Errorf("backend logout called %d times, want %d", got, n)
	}
	return nil
}

func (w *sessionWorld) toastsShown(n int) error {
	if got := len(w.notifier.Notifications()); got != n {
		return fmt.Errorf("%d toasts shown, want %d", got, n)
	}
	return nil
}

func (w *sessionWorld) lastToastSays(message string) error {
	toasts := w.notifier.Notifications()
	if len(toasts) == 0 {
		return fmt.Errorf("no toast shown")
	}
	if got := toasts[len(toasts)-1].Message; got != message {
		return fmt.Errorf("last toast %q, want %q", got, message)
	}
	return nil
}

func (w *sessionWorld) sentToLogin(n int) error {
	paths := w.navigator.Paths()
	if len(paths) != n {
		return fmt.Errorf("navigated %d times, want %d", len(paths), n)
	}
	for _, p := range paths {
		if p != domain.LoginPath {
			return fmt.Errorf("navigated to %q", p)
		}
	}
	return nil
}

func (w *sessionWorld) sessionCleared() error {
	if w.mgr.IsAuthenticated() || w.mgr.Token() != "" || w.mgr.User() != nil {
		return fmt.Errorf("session still holds credentials")
	}
	if w.repo.Stored() != nil {
		return fmt.Errorf("session still persisted")
	}
	return nil
}

func (w *sessionWorld) stillLoggedIn() error {
	if !w.mgr.IsAuthenticated() {
		return fmt.Errorf("user was logged out")
	}
	return nil
}

func (w *sessionWorld) pendingEmailIs(email string) error {
	return w.mgr.SetEmailForVerification(context.Background(), email)
}

func (w *sessionWorld) backendRejectsCredentials() error {
	w.api.LoginFn = func(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
		return nil, domain.NewAPIError(http.StatusBadRequest, "Invalid credentials", nil)
	}
	return nil
}

func (w *sessionWorld) signsInWithWrongPassword(email string) error {
	_, w.signInErr = w.accounts.SignIn(context.Background(), domain.LoginRequest{Email: email, Password: "wrong"})
	return nil
}

func (w *sessionWorld) signInFails() error {
	if w.signInErr == nil {
		return fmt.Errorf("sign in succeeded")
	}
	return nil
}

func (w *sessionWorld) pendingEmailStill(email string) error {
	got, err := w.mgr.EmailForVerification(context.Background())
	if err != nil {
		return err
	}
	if got != email {
		return fmt.Errorf("pending email %q, want %q", got, email)
	}
	return nil
}

func initializeSessionScenario(sc *godog.ScenarioContext) {
	w := &sessionWorld{}

	sc.After(func(ctx context.Context, s *godog.Scenario, err error) (context.Context, error) {
		if w.mgr != nil {
			w.mgr.Close()
		}
		return ctx, nil
	})

	sc.Step(`^a running session manager with default timeouts$`, w.runningManager)
	sc.Step(`^the user "([^"]*)" is logged in$`, w.loggedIn)
	sc.Step(`^(\d+) logouts with the expiry message run at the same time$`, w.concurrentLogouts)
	sc.Step(`^(\d+) unauthorized answers arrive$`, w.unauthorizedAnswers)
	sc.Step(`^(\d+) seconds pass$`, w.secondsPass)
	sc.Step(`^(\d+) minutes pass$`, w.minutesPass)
	sc.Step(`^the user stays active for (\d+) hours$`, w.activeFor)
	sc.Step(`^the user clicks$`, func() error {
		w.mgr.RecordActivity(domain.ActivityClick)
		return nil
	})
	sc.Step(`^the session expires( again)?$`, func(string) error { return w.sessionExpires() })
	sc.Step(`^the backend logout endpoint was called (\d+) times?$`, w.backendLogoutCalls)
	sc.Step(`^(\d+) toasts? (?:was|were) shown$`, w.toastsShown)
	sc.Step(`^the last toast says "([^"]*)"$`, w.lastToastSays)
	sc.Step(`^the user was sent to the login page (\d+) times?$`, w.sentToLogin)
	sc.Step(`^the session is cleared$`, w.sessionCleared)
	sc.Step(`^the user is still logged in$`, w.stillLoggedIn)
	sc.Step(`^the pending email is "([^"]*)"$`, w.pendingEmailIs)
	sc.Step(`^the backend rejects credentials$`, w.backendRejectsCredentials)
	sc.Step(`^"([^"]*)" signs in with a wrong password$`, w.signsInWithWrongPassword)
	sc.Step(`^the sign in fails$`, w.signInFails)
	sc.Step(`^the pending email is still "([^"]*)"$`, w.pendingEmailStill)
}

func TestSessionFeatures(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "session-lifecycle",
		ScenarioInitializer: initializeSessionScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			Strict:   true,
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
