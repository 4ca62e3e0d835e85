package app

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitchain/internal/constants"
	apperrors "github.com/julianstephens/habitchain/internal/errors"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/storage"
	"github.com/julianstephens/habitchain/internal/storage/jsonfile"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newApp(t *testing.T, store storage.Provider) (*App, *clock) {
	t.Helper()
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.SetSetting(constants.SettingTimezone, "UTC"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	c := &clock{now: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)}
	a, err := New(store, Options{BcryptCost: bcrypt.MinCost, Clock: c.Now})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return a, c
}

// backends runs fn against every file-based backend
func backends(t *testing.T, fn func(t *testing.T, a *App, c *clock)) {
	t.Run("sqlite", func(t *testing.T) {
		a, c := newApp(t, sqlite.NewStore(filepath.Join(t.TempDir(), "habitchain.db")))
		fn(t, a, c)
	})
	t.Run("json", func(t *testing.T) {
		a, c := newApp(t, jsonfile.NewStore(filepath.Join(t.TempDir(), "habitchain.json")))
		fn(t, a, c)
	})
}

func TestScenario_SignupLoginWrongPassword(t *testing.T) {
	backends(t, func(t *testing.T, a *App, _ *clock) {
		profile, err := a.Signup("Ada", "ada@example.com", "hunter2")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if cur := a.CurrentUser(); cur == nil || cur.ID != profile.ID {
			t.Fatalf("signup should start a session, got %+v", cur)
		}

		if _, err := a.Signup("Ada Again", "ada@example.com", "other"); !errors.Is(err, apperrors.ErrDuplicateEmail) {
			t.Errorf("expected ErrDuplicateEmail, got %v", err)
		}

		if err := a.Logout(); err != nil {
			t.Fatalf("Logout failed: %v", err)
		}
		if a.CurrentUser() != nil {
			t.Error("expected anonymous after logout")
		}

		if _, err := a.Login("ada@example.com", "wrong"); !errors.Is(err, apperrors.ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
		if a.CurrentUser() != nil {
			t.Error("failed login must not start a session")
		}

		got, err := a.Login("ada@example.com", "hunter2")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if got.ID != profile.ID {
			t.Errorf("Login returned %s, want %s", got.ID, profile.ID)
		}
	})
}

func TestScenario_CreateCompleteCompleteAgain(t *testing.T) {
	backends(t, func(t *testing.T, a *App, c *clock) {
		user, err := a.Signup("Ada", "ada@example.com", "pw")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}

		h, err := a.CreateHabit(user.ID, models.HabitFields{Name: "Read", Category: constants.CategoryLearning})
		if err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}

		done, err := a.CompleteHabit(h.ID)
		if err != nil {
			t.Fatalf("CompleteHabit failed: %v", err)
		}
		if done.Streak != 1 || done.Points != 10 || !done.TodayCompleted {
			t.Errorf("unexpected habit after completion: %+v", done)
		}

		again, err := a.CompleteHabit(h.ID)
		if !errors.Is(err, apperrors.ErrAlreadyCompletedToday) {
			t.Fatalf("expected ErrAlreadyCompletedToday, got %v", err)
		}
		if again.Streak != 1 || again.Points != 10 {
			t.Errorf("repeat completion changed the habit: %+v", again)
		}

		c.now = c.now.AddDate(0, 0, 1)
		next, err := a.CompleteHabit(h.ID)
		if err != nil {
			t.Fatalf("next-day CompleteHabit failed: %v", err)
		}
		if next.Streak != 2 || next.Points != 20 {
			t.Errorf("expected streak 2 / points 20, got %d / %d", next.Streak, next.Points)
		}

		summary, err := a.Summary(user.ID)
		if err != nil {
			t.Fatalf("Summary failed: %v", err)
		}
		if summary.Total != 1 || summary.CompletedToday != 1 || summary.TotalPoints != 20 || summary.Pending != 0 {
			t.Errorf("unexpected summary: %+v", summary)
		}

		history, err := a.History(h.ID, 7)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 2 {
			t.Errorf("expected 2 completions in history, got %d", len(history))
		}
	})
}

func TestListHabits_NeverLeaksOtherOwners(t *testing.T) {
	backends(t, func(t *testing.T, a *App, _ *clock) {
		ada, err := a.Signup("Ada", "ada@example.com", "pw")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		if _, err := a.CreateHabit(ada.ID, models.HabitFields{Name: "Run"}); err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}

		grace, err := a.Signup("Grace", "grace@example.com", "pw")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		gh, err := a.CreateHabit(grace.ID, models.HabitFields{Name: "Code"})
		if err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}

		list, err := a.ListHabits(grace.ID)
		if err != nil {
			t.Fatalf("ListHabits failed: %v", err)
		}
		if len(list) != 1 || list[0].ID != gh.ID {
			t.Errorf("expected only Grace's habit, got %+v", list)
		}

		if _, err := a.Login("ada@example.com", "pw"); err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if _, err := a.CompleteHabit(gh.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("completing another owner's habit should be ErrNotFound, got %v", err)
		}
	})
}

func TestRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitchain.db")
	a, _ := newApp(t, sqlite.NewStore(path))

	profile, err := a.Signup("Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	a.Store().Close()

	reopened := sqlite.NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	defer reopened.Close()

	b, err := New(reopened, Options{BcryptCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	restored, err := b.Restore()
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored == nil || restored.ID != profile.ID {
		t.Errorf("expected restored session for %s, got %+v", profile.ID, restored)
	}
}

func TestOnboarding(t *testing.T) {
	backends(t, func(t *testing.T, a *App, _ *clock) {
		if a.OnboardingComplete() {
			t.Error("fresh store should not have completed onboarding")
		}
		if err := a.CompleteOnboarding(); err != nil {
			t.Fatalf("CompleteOnboarding failed: %v", err)
		}
		if !a.OnboardingComplete() {
			t.Error("expected onboarding to be complete")
		}
	})
}

func TestSetTimezone(t *testing.T) {
	a, _ := newApp(t, sqlite.NewStore(filepath.Join(t.TempDir(), "habitchain.db")))

	if err := a.SetTimezone("Not/AZone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
	if err := a.SetTimezone("UTC"); err != nil {
		t.Fatalf("SetTimezone failed: %v", err)
	}
	if a.Habits.Location().String() != "UTC" {
		t.Errorf("expected habit store to use UTC, got %s", a.Habits.Location())
	}
}

func TestSetTimezone_DoneTodayMatchesCompletion(t *testing.T) {
	tests := []struct {
		name      string
		from, to  string
		completed time.Time
		later     time.Time
		wantDone  bool
	}{
		{
			// 15:30 UTC Mar 1 is Mar 2 in Tokyo, and 01:00 UTC Mar 2 is still Mar 2
			name:      "Tokyo to UTC same recorded day",
			from:      "Asia/Tokyo",
			to:        "UTC",
			completed: time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
			later:     time.Date(2024, 3, 2, 1, 0, 0, 0, time.UTC),
			wantDone:  true,
		},
		{
			// recorded as Mar 1 in UTC, while 00:30 UTC Mar 2 is Mar 2 in Tokyo
			name:      "UTC to Tokyo next recorded day",
			from:      "UTC",
			to:        "Asia/Tokyo",
			completed: time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC),
			later:     time.Date(2024, 3, 2, 0, 30, 0, 0, time.UTC),
			wantDone:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := time.LoadLocation("Asia/Tokyo"); err != nil {
				t.Skipf("tzdata unavailable: %v", err)
			}
			backends(t, func(t *testing.T, a *App, c *clock) {
				if err := a.SetTimezone(tt.from); err != nil {
					t.Fatalf("SetTimezone(%s) failed: %v", tt.from, err)
				}
				user, err := a.Signup("Ada", "ada@example.com", "pw")
				if err != nil {
					t.Fatalf("Signup failed: %v", err)
				}
				h, err := a.CreateHabit(user.ID, models.HabitFields{Name: "Run"})
				if err != nil {
					t.Fatalf("CreateHabit failed: %v", err)
				}

				c.now = tt.completed
				if _, err := a.CompleteHabit(h.ID); err != nil {
					t.Fatalf("CompleteHabit failed: %v", err)
				}

				if err := a.SetTimezone(tt.to); err != nil {
					t.Fatalf("SetTimezone(%s) failed: %v", tt.to, err)
				}
				c.now = tt.later

				listed, err := a.ListHabits(user.ID)
				if err != nil {
					t.Fatalf("ListHabits failed: %v", err)
				}
				if listed[0].TodayCompleted != tt.wantDone {
					t.Fatalf("listed TodayCompleted = %v, want %v", listed[0].TodayCompleted, tt.wantDone)
				}

				got, err := a.CompleteHabit(h.ID)
				if repeat := errors.Is(err, apperrors.ErrAlreadyCompletedToday); repeat != tt.wantDone {
					t.Fatalf("CompleteHabit err = %v, listing said done=%v", err, tt.wantDone)
				}
				if !tt.wantDone && err != nil {
					t.Fatalf("CompleteHabit failed: %v", err)
				}

				wantStreak := 2
				if tt.wantDone {
					wantStreak = 1
				}
				if got.Streak != wantStreak || got.Points != 10*wantStreak || !got.TodayCompleted {
					t.Errorf("unexpected habit: streak=%d points=%d today=%v", got.Streak, got.Points, got.TodayCompleted)
				}
			})
		})
	}
}

func TestConcurrentCompleteAndSignup(t *testing.T) {
	const workers = 20

	backends(t, func(t *testing.T, a *App, _ *clock) {
		user, err := a.Signup("Ada", "ada@example.com", "pw")
		if err != nil {
			t.Fatalf("Signup failed: %v", err)
		}
		h, err := a.CreateHabit(user.ID, models.HabitFields{Name: "Run"})
		if err != nil {
			t.Fatalf("CreateHabit failed: %v", err)
		}

		var wg sync.WaitGroup
		completeErrs := make([]error, workers)
		signupErrs := make([]error, workers)
		for i := 0; i < workers; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				_, completeErrs[i] = a.CompleteHabit(h.ID)
			}(i)
			go func(i int) {
				defer wg.Done()
				_, signupErrs[i] = a.Accounts.Create("Bob", "bob@example.com", "pw")
			}(i)
		}
		wg.Wait()

		completed, signedUp := 0, 0
		for i := 0; i < workers; i++ {
			switch err := completeErrs[i]; {
			case err == nil:
				completed++
			case !errors.Is(err, apperrors.ErrAlreadyCompletedToday):
				t.Errorf("CompleteHabit: unexpected error %v", err)
			}
			switch err := signupErrs[i]; {
			case err == nil:
				signedUp++
			case !errors.Is(err, apperrors.ErrDuplicateEmail):
				t.Errorf("Create: unexpected error %v", err)
			}
		}
		if completed != 1 || signedUp != 1 {
			t.Fatalf("expected exactly one success each, got completions=%d signups=%d", completed, signedUp)
		}

		stored, err := a.Habits.Get(h.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if stored.Streak != 1 || stored.Points != 10 {
			t.Errorf("expected streak 1 / points 10, got %d / %d", stored.Streak, stored.Points)
		}
		history, err := a.History(h.ID, 1)
		if err != nil {
			t.Fatalf("History failed: %v", err)
		}
		if len(history) != 1 {
			t.Errorf("expected one completion row, got %d", len(history))
		}
	})
}

func TestCompleteHabit_SharedDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitchain.db")
	first, c := newApp(t, sqlite.NewStore(path))

	user, err := first.Signup("Ada", "ada@example.com", "pw")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	h, err := first.CreateHabit(user.ID, models.HabitFields{Name: "Run"})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	other := sqlite.NewStore(path)
	if err := other.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	t.Cleanup(func() { other.Close() })
	second, err := New(other, Options{BcryptCost: bcrypt.MinCost, Clock: c.Now})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := second.Restore(); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if _, err := first.CompleteHabit(h.ID); err != nil {
		t.Fatalf("CompleteHabit failed: %v", err)
	}
	got, err := second.CompleteHabit(h.ID)
	if !errors.Is(err, apperrors.ErrAlreadyCompletedToday) {
		t.Fatalf("expected ErrAlreadyCompletedToday from the second instance, got %v", err)
	}
	if got.Streak != 1 || got.Points != 10 {
		t.Errorf("second instance changed the habit: streak=%d points=%d", got.Streak, got.Points)
	}
}

func TestRequireUser(t *testing.T) {
	a, _ := newApp(t, sqlite.NewStore(filepath.Join(t.TempDir(), "habitchain.db")))
	if _, err := a.RequireUser(); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}
