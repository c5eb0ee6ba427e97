package i18n

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	mperrors "mealprep/backend/common/errors"
)

const defaultLang = "en"

var (
	messagesLock sync.RWMutex
	messages     = map[string]map[string]string{
		"en": {
			mperrors.ErrInternalServer:       "Internal server error",
			mperrors.ErrInvalidParam:         "Invalid parameter: %s",
			mperrors.ErrUnauthorized:         "Not logged in or token invalid",
			mperrors.ErrEmptyID:              "ID is empty",
			mperrors.ErrUserNotFound:         "User not found",
			mperrors.ErrEmptyCredentials:     "Username or password is empty",
			mperrors.ErrInvalidCredentials:   "Wrong username or password, or the user is disabled",
			mperrors.ErrUserDisabled:         "User is disabled",
			mperrors.ErrEmailTaken:           "Email is already taken",
			mperrors.ErrUsernameTaken:        "Username is already taken",
			mperrors.ErrComponentNotFound:    "Component not found",
			mperrors.ErrSlotNotFound:         "Meal slot not found",
			mperrors.ErrNoServings:           "No servings left for %s",
			mperrors.ErrStaleIndex:           "The plan changed, please reload",
			mperrors.ErrInvariantViolation:   "Plan data is inconsistent: %s",
			mperrors.ErrPlanConflict:         "The plan was changed elsewhere, please reload",
			mperrors.ErrInvalidDate:          "Invalid date, expected YYYY-MM-DD",
			mperrors.ErrFavoriteNotFound:     "Favorite meal not found",
			mperrors.ErrShoppingItemNotFound: "Shopping item not found",
			mperrors.ErrTemplateFormat:       "Invalid template: %s",
		},
		"zh": {
			mperrors.ErrInternalServer:       "服务器内部错误",
			mperrors.ErrInvalidParam:         "参数无效：%s",
			mperrors.ErrUnauthorized:         "未登录或 token 无效",
			mperrors.ErrEmptyID:              "ID 为空",
			mperrors.ErrUserNotFound:         "未找到用户",
			mperrors.ErrEmptyCredentials:     "用户名或密码为空",
			mperrors.ErrInvalidCredentials:   "用户名或密码错误，或用户已被封禁",
			mperrors.ErrUserDisabled:         "用户已被封禁",
			mperrors.ErrEmailTaken:           "邮箱已被占用",
			mperrors.ErrUsernameTaken:        "用户名已被占用",
			mperrors.ErrComponentNotFound:    "未找到食材",
			mperrors.ErrSlotNotFound:         "未找到餐位",
			mperrors.ErrNoServings:           "%s 没有剩余份数",
			mperrors.ErrStaleIndex:           "计划已变化，请刷新",
			mperrors.ErrInvariantViolation:   "计划数据不一致：%s",
			mperrors.ErrPlanConflict:         "计划已在其他地方修改，请刷新",
			mperrors.ErrInvalidDate:          "日期无效，应为 YYYY-MM-DD",
			mperrors.ErrFavoriteNotFound:     "未找到收藏的餐",
			mperrors.ErrShoppingItemNotFound: "未找到购物项",
			mperrors.ErrTemplateFormat:       "模板无效：%s",
		},
	}
)

// Init loads <lang>.json files from dir; their entries override the built-in messages.
func Init(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	messagesLock.Lock()
	defer messagesLock.Unlock()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return err
		}
		var m map[string]string
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("parse %s: %w", entry.Name(), err)
		}
		lang := strings.TrimSuffix(entry.Name(), ".json")
		if messages[lang] == nil {
			messages[lang] = make(map[string]string)
		}
		for k, v := range m {
			messages[lang][k] = v
		}
	}
	return nil
}

// Translate returns the message of code in lang ("zh-CN" matches "zh"), falling
// back to English and then to the code itself.
func Translate(code string, lang string, args ...any) string {
	messagesLock.RLock()
	defer messagesLock.RUnlock()

	msg, ok := lookup(code, normalize(lang))
	if !ok {
		msg, ok = lookup(code, defaultLang)
	}
	if !ok {
		return code
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}

func lookup(code, lang string) (string, bool) {
	m, ok := messages[lang]
	if !ok {
		return "", false
	}
	msg, ok := m[code]
	return msg, ok
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
