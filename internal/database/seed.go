package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"researchoffice/internal/sitecontent"
)

// SeedOptions configures the initial admin account.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

// sampleNews is inserted once so a fresh install has a populated news feed.
var sampleNews = []struct {
	title, content, imageURL string
	age                      time.Duration
}{
	{
		title:    "ขอเชิญเข้าร่วมอบรมเชิงปฏิบัติการ การเขียนโครงร่างงานวิจัย ประจำปี 2569",
		content:  "รายละเอียดการอบรม... (ตัวอย่างเนื้อหาข่าว) เพื่อพัฒนาศักยภาพบุคลากรทางการแพทย์ในการทำวิจัยอย่างมีคุณภาพ",
		imageURL: "https://images.unsplash.com/photo-1576091160399-112ba8d25d1d?auto=format&fit=crop&q=80&w=2070",
	},
	{
		title:   "ประกาศทุนอุดหนุนการวิจัย ประจำปีงบประมาณ 2569",
		content: "สำนักงานส่งเสริมวิจัย เปิดรับข้อเสนอโครงการวิจัยเพื่อขอรับทุนอุดหนุนการวิจัย...",
		age:     24 * time.Hour,
	},
}

// Seed populates the database with the admin account, the default site
// content and sample news. It is safe to run repeatedly: existing users and
// news are left alone and content rows only get their label, type and
// section refreshed so edited values survive.
func Seed(db *sql.DB, opts SeedOptions) error {
	if err := seedAdmin(db, opts); err != nil {
		return err
	}
	if err := seedContent(db); err != nil {
		return err
	}
	return seedNews(db)
}

func seedAdmin(db *sql.DB, opts SeedOptions) error {
	var exists bool
	if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, opts.AdminEmail).Scan(&exists); err != nil {
		return fmt.Errorf("seed check admin: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, name, role)
		VALUES ($1, $2, $3, 'ADMIN')
	`, opts.AdminEmail, string(hash), "Admin User")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", opts.AdminEmail)
	return nil
}

func seedContent(db *sql.DB) error {
	items, err := sitecontent.Defaults()
	if err != nil {
		return err
	}

	for _, it := range items {
		_, err := db.Exec(`
			INSERT INTO site_content (key, section, label, value, type)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (key) DO UPDATE
			SET section = EXCLUDED.section, label = EXCLUDED.label, type = EXCLUDED.type
		`, it.Key, it.Section, it.Label, it.Value, it.Type)
		if err != nil {
			return fmt.Errorf("seed content %s: %w", it.Key, err)
		}
	}

	slog.Info("site content seeded", "keys", len(items))
	return nil
}

func seedNews(db *sql.DB) error {
	for _, n := range sampleNews {
		var exists bool
		if err := db.QueryRow(`SELECT EXISTS (SELECT 1 FROM news WHERE title = $1)`, n.title).Scan(&exists); err != nil {
			return fmt.Errorf("seed check news: %w", err)
		}
		if exists {
			continue
		}
		_, err := db.Exec(`
			INSERT INTO news (title, content, image_url, published, publish_date)
			VALUES ($1, $2, $3, TRUE, $4)
		`, n.title, n.content, n.imageURL, time.Now().Add(-n.age))
		if err != nil {
			return fmt.Errorf("seed insert news: %w", err)
		}
	}
	return nil
}
