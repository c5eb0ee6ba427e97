package model

import (
	"os"
	"path/filepath"

	"mealprep/backend/common"

	"github.com/burugo/thing"
	redisCache "github.com/burugo/thing/drivers/cache/redis"
	"github.com/burugo/thing/drivers/db/sqlite"
)

func createRootAccountIfNeed() error {
	users, err := UserDB.Query(thing.QueryParams{}).Fetch(0, 1)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		common.SysLog("no user exists, create a root user for you: username is root, password is 123456")
		hashedPassword, err := common.Password2Hash("123456")
		if err != nil {
			return err
		}
		rootUser := &User{
			Username:    "root",
			Password:    hashedPassword,
			Role:        common.RoleRootUser,
			Status:      common.UserStatusEnabled,
			DisplayName: "Root User",
			Email:       "root@localhost",
		}
		if err := UserDB.Save(rootUser); err != nil {
			return err
		}
	}
	return nil
}

func InitDB() (err error) {
	if common.SQLitePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(common.SQLitePath), 0o755); err != nil {
			return err
		}
	}
	dbAdapter, err := sqlite.NewSQLiteAdapter(common.SQLitePath)
	if err != nil {
		return err
	}
	var cacheClient thing.CacheClient = nil
	if common.RedisEnabled && common.RDB != nil {
		cacheClient, err = redisCache.NewClient(common.RDB, nil)
		if err != nil {
			return err
		}
	}
	thing.Configure(dbAdapter, cacheClient)

	// 1. tables
	err = thing.AutoMigrate(&User{}, &Component{}, &MealSlot{}, &FavoriteMeal{}, &ShoppingItem{}, &PlanLog{})
	if err != nil {
		return err
	}

	// 2. ORM handles
	if err := UserInit(); err != nil {
		return err
	}
	if err := PlanInit(); err != nil {
		return err
	}
	if err := ShoppingItemInit(); err != nil {
		return err
	}
	if err := PlanLogInit(); err != nil {
		return err
	}

	// 3. data
	return createRootAccountIfNeed()
}

func CloseDB() error {
	// thing keeps no handle that needs closing
	return nil
}
