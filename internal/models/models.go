package models

import "time"

type User struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	LastSeenAt   *time.Time `db:"last_seen_at"`
}

type Role struct {
	ID   string `db:"id"`
	Code string `db:"code"`
}

// Unit is an organizational entity (satker) whose official Instagram and
// TikTok accounts publish the content personnel must engage with.
type Unit struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	Type            string    `db:"type"` // org | direktorat
	RegionalID      *string   `db:"regional_id"`
	InstagramHandle *string   `db:"instagram_handle"`
	TiktokHandle    *string   `db:"tiktok_handle"`
	Active          bool      `db:"active"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Person is a tracked member of a unit. UnitID is soft: directorate
// affiliation goes through role memberships, not unit_id.
type Person struct {
	ID                string    `db:"id"`
	UnitID            *string   `db:"unit_id"`
	Name              string    `db:"name"`
	Rank              *string   `db:"rank"`
	Division          *string   `db:"division"`
	InstagramUsername *string   `db:"instagram_username"`
	TiktokUsername    *string   `db:"tiktok_username"`
	Active            bool      `db:"active"`
	Exception         bool      `db:"exception"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type RoleMembership struct {
	ID       string    `db:"id"`
	PersonID string    `db:"person_id"`
	RoleName string    `db:"role_name"`
	Active   bool      `db:"active"`
	JoinedAt time.Time `db:"joined_at"`
}

// Post is a piece of published content on either platform. ID is the
// Instagram shortcode or the TikTok video id. RoleName is an optional tag
// used by role-scoped queries independent of unit_id.
type Post struct {
	ID        string    `db:"id"`
	Platform  string    `db:"platform"` // instagram | tiktok
	UnitID    string    `db:"unit_id"`
	RoleName  *string   `db:"role_name"`
	Caption   *string   `db:"caption"`
	CreatedAt time.Time `db:"created_at"`
	FetchedAt time.Time `db:"fetched_at"`
}

// EngagementRecord holds the deduplicated username set attached to a post:
// likers for Instagram, commenters for TikTok. Usernames is raw JSONB and may
// carry legacy object shapes alongside plain strings.
type EngagementRecord struct {
	PostID    string    `db:"post_id"`
	Platform  string    `db:"platform"`
	Usernames []byte    `db:"usernames"`
	UpdatedAt time.Time `db:"updated_at"`
}

type ServerMetricSample struct {
	ID                string    `db:"id"`
	CapturedAt        time.Time `db:"captured_at"`
	HeapUsedBytes     int64     `db:"heap_used_bytes"`
	HeapMaxBytes      int64     `db:"heap_max_bytes"`
	SystemMemoryTotal int64     `db:"system_memory_total_bytes"`
	SystemMemoryUsed  int64     `db:"system_memory_used_bytes"`
	DiskTotalBytes    int64     `db:"disk_total_bytes"`
	DiskUsedBytes     int64     `db:"disk_used_bytes"`
	ProcessCpuLoad    float64   `db:"process_cpu_load"`
	SystemCpuLoad     float64   `db:"system_cpu_load"`
}

type SiteVisit struct {
	ID        string    `db:"id"`
	IPAddress *string   `db:"ip_address"`
	UserAgent *string   `db:"user_agent"`
	Path      *string   `db:"path"`
	Referrer  *string   `db:"referrer"`
	CreatedAt time.Time `db:"created_at"`
}
