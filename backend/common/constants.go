package common

import (
	"flag"
	"time"

	"github.com/google/uuid"
)

var Version = "v0.0.0"

var (
	Port          = flag.Int("port", 3000, "the listening port")
	PrintVersion  = flag.Bool("version", false, "print version and exit")
	PrintHelpFlag = flag.Bool("help", false, "print help and exit")
	LogDir        = flag.String("log-dir", "", "specify the log directory")
)

// Filled from the config file, .env and the environment; see LoadConfig.
var (
	SessionSecret    = uuid.New().String()
	JWTSecret        = uuid.New().String()
	JWTRefreshSecret = JWTSecret
	SQLitePath       = "data/mealprep.db"
	FrontendDir      = ""
	// I18nDir holds optional <lang>.json message overrides.
	I18nDir = ""
)

// Planner storage.
const (
	StoreDriverThing  = "thing"
	StoreDriverMongo  = "mongo"
	StoreDriverMemory = "memory"
)

var (
	StoreDriver   = StoreDriverThing
	MongoURI      = ""
	MongoDatabase = "mealprep"
	// FlushDelay is the quiescence window before a dirty plan is written back.
	FlushDelay = 1500 * time.Millisecond
)

var ItemsPerPage = 20

// Week layout.
const DaysPerWeek = 7

const (
	RoleGuestUser  = 0
	RoleCommonUser = 1
	RoleAdminUser  = 10
	RoleRootUser   = 100
)

const (
	UserStatusEnabled  = 1
	UserStatusDisabled = 2
)

// Rate limits, requests per minute per client ip.
var (
	GlobalApiRateLimitNum  = 300
	CriticalRateLimitNum   = 20
	GlobalWebRateLimitNum  = 600
	RateLimitKeyExpiration = 10 * time.Minute
)
