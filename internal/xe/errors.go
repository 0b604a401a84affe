package xe

import (
	"errors"

	"github.com/go-orz/orz"
)

var (
	ErrInvalidParams        = orz.NewError(10400, "invalid parameters")
	ErrInvalidToken         = orz.NewError(10403, "invalid token")
	ErrPermissionDenied     = orz.NewError(10401, "permission denied")
	ErrNotFound             = orz.NewError(10404, "record not found")
	ErrAccountAlreadyUsed   = orz.NewError(10000, "username already in use")
	ErrIncorrectPassword    = orz.NewError(10001, "incorrect username or password")
	ErrIncorrectOldPassword = orz.NewError(10003, "old password is incorrect")
	ErrCurrentNotAllowed    = orz.NewError(10004, "operation not allowed in the current state")

	ErrInvalidPlatform     = orz.NewError(11001, "platform must be mt4 or mt5")
	ErrChallengeNotFound   = orz.NewError(11002, "challenge not found")
	ErrAccountNotFound     = orz.NewError(11003, "broker account not found")
	ErrMetaApiIDExists     = orz.NewError(11004, "metaapi account id already registered")
	ErrAccountDisabled     = orz.NewError(11005, "broker account is disabled")
	ErrLoopAlreadyRunning  = orz.NewError(11006, "evaluation loop is already running")
	ErrLoopNotRunning      = orz.NewError(11007, "evaluation loop is not running")
	ErrPurchasesDisabled   = orz.NewError(11008, "woocommerce sync is disabled")
	ErrInvalidObjectiveReq = orz.NewError(11009, "rules and metrics must be JSON objects")
)

// IsNotFound 判断是否为“不存在”类错误
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrChallengeNotFound) || errors.Is(err, ErrAccountNotFound)
}
