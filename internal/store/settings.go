package store

import (
	"fmt"
	"strconv"
)

// GetSettings reads all settings, substituting defaults for any key
// that is missing or holds an unparseable value.
func (s *Store) GetSettings() (Settings, error) {
	out := DefaultSettings()

	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return out, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, fmt.Errorf("scan setting: %w", err)
		}
		switch key {
		case "work_duration":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				out.WorkDuration = n
			}
		case "break_duration":
			if n, err := strconv.Atoi(value); err == nil && n > 0 {
				out.BreakDuration = n
			}
		case "notifications_enabled":
			out.NotificationsEnabled = value == "1" || value == "true"
		case "linear_api_token":
			out.LinearAPIToken = value
		}
	}
	return out, rows.Err()
}

// SaveSettings writes all settings wholesale.
func (s *Store) SaveSettings(cfg Settings) error {
	notif := "0"
	if cfg.NotificationsEnabled {
		notif = "1"
	}
	pairs := map[string]string{
		"work_duration":         strconv.Itoa(cfg.WorkDuration),
		"break_duration":        strconv.Itoa(cfg.BreakDuration),
		"notifications_enabled": notif,
		"linear_api_token":      cfg.LinearAPIToken,
	}
	for key, value := range pairs {
		if err := s.setSetting(key, value); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set setting %s: %w", key, err)
	}
	return nil
}
