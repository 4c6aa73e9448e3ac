package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPTTL is how long a signup code stays valid.
const OTPTTL = 5 * time.Minute

func otpKey(email string) string {
	return "otp:" + email
}

// StoreOTP saves the code for an email address. A new code replaces any
// previous one for the same address.
func StoreOTP(ctx context.Context, email, code string) error {
	return Client.Set(ctx, otpKey(email), code, OTPTTL).Err()
}

// VerifyOTP compares the submitted code against the stored one. The code is
// single use: a successful match deletes it. An expired or missing code simply
// fails the match.
func VerifyOTP(ctx context.Context, email, code string) (bool, error) {
	stored, err := Client.Get(ctx, otpKey(email)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if stored != code {
		return false, nil
	}

	Client.Del(ctx, otpKey(email))
	return true, nil
}
