package helpers

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionTTL bounds how long a login session lives without a refresh.
const SessionTTL = 24 * time.Hour

// SessionKey is the Redis hash holding the active session of a user.
func SessionKey(userID int64) string {
	return "user:session:" + strconv.FormatInt(userID, 10)
}

// Session mirrors the fields stored in the session hash.
type Session struct {
	UserID   int64
	Username string
	Role     string
	SID      string
}

// SaveSession writes s and resets its expiry.
func SaveSession(ctx context.Context, rdb *redis.Client, s Session) error {
	key := SessionKey(s.UserID)
	pipe := rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    s.UserID,
		"username":   s.Username,
		"role":       s.Role,
		"sid":        s.SID,
		"logged_in":  true,
		"updated_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// LoadSession returns the stored session, or ok=false when there is none.
func LoadSession(ctx context.Context, rdb *redis.Client, userID int64) (Session, bool, error) {
	data, err := rdb.HGetAll(ctx, SessionKey(userID)).Result()
	if err != nil {
		return Session{}, false, err
	}
	if len(data) == 0 {
		return Session{}, false, nil
	}
	return Session{UserID: userID, Username: data["username"], Role: data["role"], SID: data["sid"]}, true, nil
}

func DeleteSession(ctx context.Context, rdb *redis.Client, userID int64) error {
	return rdb.Del(ctx, SessionKey(userID)).Err()
}
