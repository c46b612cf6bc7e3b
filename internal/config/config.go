package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strings" // strings splits comma-separated list variables
	"time"    // time expresses the booking policy knobs as durations
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, durations for the
// booking policy windows, int64 for money amounts in cents.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify JWTs issued by the identity service

	StaleHoldTolerance time.Duration // age after which an unpaid hold may be purged by a competing request
	MinAdvanceNotice   time.Duration // minimum gap between "now" and start for paid bookings
	RefundWindow       time.Duration // cancellations earlier than this before start earn a credit
	CleanupBuffer      time.Duration // turnaround gap enforced between consecutive bookings
	PaymentHoldTTL     time.Duration // how long a PENDING_PAYMENT hold survives before expiry
	ExpireLead         time.Duration // sweeper: expire unpaid holds this close to their start
	ExpireHorizon      time.Duration // sweeper: expire unpaid holds older than this outright
	SweepInterval      time.Duration // sweeper tick period
	MinChargeCents     int64         // smallest amount the payment gateway accepts

	SweepSecret     string   // shared secret guarding the internal sweep endpoint
	DevCouponCodes  []string // coupon codes honoured without a registry row (dev/test)
	DevCouponEmails []string // identities allowed to use dev coupons
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Policy knobs fall
// back to sensible defaults so a bare dev environment boots.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used to verify JWTs

		StaleHoldTolerance: minutes(envInt("STALE_HOLD_TOLERANCE_MIN", 12)),
		MinAdvanceNotice:   minutes(envInt("MIN_ADVANCE_NOTICE_MIN", 35)),
		RefundWindow:       hours(envInt("REFUND_WINDOW_HOURS", 24)),
		CleanupBuffer:      minutes(envInt("CLEANUP_BUFFER_MIN", 0)),
		PaymentHoldTTL:     hours(envInt("PAYMENT_HOLD_TTL_HOURS", 2)),
		ExpireLead:         minutes(envInt("EXPIRE_LEAD_MIN", 60)),
		ExpireHorizon:      hours(envInt("EXPIRE_HORIZON_HOURS", 3)),
		SweepInterval:      minutes(envInt("SWEEP_INTERVAL_MIN", 10)),
		MinChargeCents:     int64(envInt("MIN_CHARGE_CENTS", 100)),

		SweepSecret:     os.Getenv("SWEEP_SECRET"),
		DevCouponCodes:  splitList(os.Getenv("DEV_COUPON_CODES")),
		DevCouponEmails: splitList(os.Getenv("DEV_COUPON_EMAILS")),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func minutes(n int) time.Duration { return time.Duration(n) * time.Minute }
func hours(n int) time.Duration   { return time.Duration(n) * time.Hour }

// splitList parses a comma-separated env value into trimmed non-empty items.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
