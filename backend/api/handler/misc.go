package handler

import (
	"time"

	"mealprep/backend/common"

	"github.com/gin-gonic/gin"
)

var startTime = time.Now()

func GetStatus(c *gin.Context) {
	common.RespSuccess(c, gin.H{
		"version":      common.Version,
		"start_time":   common.FormatTime(startTime),
		"store_driver": common.StoreDriver,
		"redis":        common.RedisEnabled,
		"days":         common.DaysPerWeek,
	})
}
