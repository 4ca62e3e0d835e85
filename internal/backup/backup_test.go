package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitchain/internal/constants"
	"github.com/julianstephens/habitchain/internal/models"
	"github.com/julianstephens/habitchain/internal/storage/jsonfile"
	"github.com/julianstephens/habitchain/internal/storage/sqlite"
)

func setupSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "habitchain.db")
	s := sqlite.NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.AddHabit(models.Habit{ID: "h1", OwnerID: "a1", Name: "Run", Frequency: "daily", ChainMembers: 1, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	s.Close()
	return path
}

func habitCount(t *testing.T, path string) int {
	t.Helper()
	s := sqlite.NewStore(path)
	if err := s.Load(); err != nil {
		t.Fatalf("Load(%s) failed: %v", path, err)
	}
	defer s.Close()
	habits, err := s.GetAllHabits()
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	return len(habits)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateBackup(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)

	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Dir(path) != mgr.BackupDir() {
		t.Errorf("backup written outside backup dir: %s", path)
	}
	if n := habitCount(t, path); n != 1 {
		t.Errorf("expected backup to contain 1 habit, got %d", n)
	}
}

func TestCreateBackup_MissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.CreateBackup(); err == nil {
		t.Error("expected error for missing database")
	}
}

func TestCreateBackup_UniqueNames(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)
	mgr.Clock = fixedClock(time.Date(2024, 3, 2, 9, 0, 0, 0, time.Local))

	first, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("first CreateBackup failed: %v", err)
	}
	second, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("second CreateBackup failed: %v", err)
	}
	if first == second {
		t.Errorf("expected distinct backup names, got %s twice", first)
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 2 {
		t.Errorf("expected 2 backups, got %d", len(backups))
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)

	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local)
	total := constants.MaxBackups + 3
	for i := 0; i < total; i++ {
		mgr.Clock = fixedClock(start.Add(time.Duration(i) * time.Minute))
		if _, err := mgr.CreateBackup(); err != nil {
			t.Fatalf("CreateBackup %d failed: %v", i, err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != constants.MaxBackups {
		t.Fatalf("expected %d backups after rotation, got %d", constants.MaxBackups, len(backups))
	}
	newest := start.Add(time.Duration(total-1) * time.Minute)
	if !backups[0].Timestamp.Equal(newest) {
		t.Errorf("expected newest backup %v first, got %v", newest, backups[0].Timestamp)
	}
}

func TestListBackups_IgnoresOtherFiles(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)

	if err := os.MkdirAll(mgr.BackupDir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", constants.BackupFilePrefix + "garbage" + constants.BackupFileSuffix} {
		if err := os.WriteFile(filepath.Join(mgr.BackupDir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.ListBackups()
	if err != nil {
		t.Fatalf("ListBackups failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected unrelated files to be ignored, got %+v", backups)
	}
}

func TestRestoreBackup(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)
	mgr.Clock = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))

	snapshot, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	s := sqlite.NewStore(dbPath)
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := s.AddHabit(models.Habit{ID: "h2", OwnerID: "a1", Name: "Read", Frequency: "daily", ChainMembers: 1, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	s.Close()
	if n := habitCount(t, dbPath); n != 2 {
		t.Fatalf("expected 2 habits before restore, got %d", n)
	}

	mgr.Clock = fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))
	previous, err := mgr.RestoreBackup(snapshot)
	if err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}
	if previous == "" {
		t.Error("expected the current database to be backed up first")
	}
	if n := habitCount(t, dbPath); n != 1 {
		t.Errorf("expected 1 habit after restore, got %d", n)
	}
	if n := habitCount(t, previous); n != 2 {
		t.Errorf("expected pre-restore backup to keep 2 habits, got %d", n)
	}
}

func TestRestoreBackup_Invalid(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.RestoreBackup(filepath.Join(t.TempDir(), "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}

	bogus := filepath.Join(t.TempDir(), "bogus.db")
	if err := os.WriteFile(bogus, []byte("this is not sqlite"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.RestoreBackup(bogus); err == nil {
		t.Error("expected error for corrupt backup")
	}
	if n := habitCount(t, dbPath); n != 1 {
		t.Errorf("failed restore must leave the database alone, got %d habits", n)
	}
}

func TestResolve(t *testing.T) {
	dbPath := setupSQLite(t)
	mgr := NewManager(dbPath)

	path, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}

	if got, err := mgr.Resolve(filepath.Base(path)); err != nil || got != path {
		t.Errorf("Resolve(name) = %q, %v", got, err)
	}
	if got, err := mgr.Resolve(path); err != nil || got != path {
		t.Errorf("Resolve(abs) = %q, %v", got, err)
	}
	if _, err := mgr.Resolve("nope.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}

func TestJSONBackupAndRestore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habitchain.json")
	s := jsonfile.NewStore(path)
	if err := s.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := s.SetSetting("k", "before"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}

	mgr := NewManager(path)
	mgr.Clock = fixedClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.Local))
	snapshot, err := mgr.CreateBackup()
	if err != nil {
		t.Fatalf("CreateBackup failed: %v", err)
	}
	if filepath.Ext(snapshot) != ".json" {
		t.Errorf("expected .json backup, got %s", snapshot)
	}

	if err := s.SetSetting("k", "after"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	s.Close()

	mgr.Clock = fixedClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.Local))
	if _, err := mgr.RestoreBackup(snapshot); err != nil {
		t.Fatalf("RestoreBackup failed: %v", err)
	}

	reopened := jsonfile.NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, _ := reopened.GetSetting("k"); v != "before" {
		t.Errorf("expected restored value %q, got %q", "before", v)
	}
}
