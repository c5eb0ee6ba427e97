package common

import "fmt"

func PrintHelp() {
	fmt.Println("Meal Prep Planner " + Version)
	fmt.Println("Usage: mealprep [--port <port>] [--log-dir <log directory>] [--version] [--help]")
	fmt.Println()
	fmt.Println("Environment (also read from .env and ~/.config/mealprep/config.ini):")
	fmt.Println("  SQLITE_PATH        sqlite database file (default data/mealprep.db)")
	fmt.Println("  STORE_DRIVER       planner store: thing, mongo or memory")
	fmt.Println("  MONGO_URI          MongoDB connection string, selects the mongo store")
	fmt.Println("  MONGO_DATABASE     MongoDB database name (default mealprep)")
	fmt.Println("  REDIS_CONN_STRING  redis url for ORM cache and token blacklist")
	fmt.Println("  FLUSH_DELAY_MS     write-back quiescence window, 0 writes synchronously")
	fmt.Println("  SESSION_SECRET, JWT_SECRET, JWT_REFRESH_SECRET, FRONTEND_DIR, I18N_DIR")
}
