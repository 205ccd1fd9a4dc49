// pkg/privilege_check/privileges.go
package privilege_check

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"strconv"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/retire/pkg/retire_err"
)

type PrivilegeLevel string

const (
	PrivilegeLevelRoot    PrivilegeLevel = "root"
	PrivilegeLevelRegular PrivilegeLevel = "regular"
)

// PrivilegeCheck describes the effective identity of the running process.
type PrivilegeCheck struct {
	UserID    int
	GroupID   int
	Username  string
	Groupname string
	IsRoot    bool
	Level     PrivilegeLevel
	Timestamp time.Time
}

// geteuid is replaced in tests.
var geteuid = os.Geteuid

// CheckPrivileges checks the current user's privilege level following Assess → Intervene → Evaluate pattern
func CheckPrivileges(ctx context.Context) (*PrivilegeCheck, error) {
	logger := otelzap.Ctx(ctx)

	// ASSESS
	check := &PrivilegeCheck{
		UserID:    geteuid(),
		GroupID:   os.Getegid(),
		Timestamp: time.Now(),
	}

	// INTERVENE
	currentUser, err := user.Current()
	if err != nil {
		logger.Warn("Failed to get current user info", zap.Error(err))
		check.Username = fmt.Sprintf("uid-%d", check.UserID)
	} else {
		check.Username = currentUser.Username
	}

	if group, err := user.LookupGroupId(strconv.Itoa(check.GroupID)); err != nil {
		check.Groupname = fmt.Sprintf("gid-%d", check.GroupID)
	} else {
		check.Groupname = group.Name
	}

	check.IsRoot = check.UserID == 0
	check.Level = PrivilegeLevelRegular
	if check.IsRoot {
		check.Level = PrivilegeLevelRoot
	}

	// EVALUATE
	logger.Debug("Privilege check completed",
		zap.String("username", check.Username),
		zap.Int("uid", check.UserID),
		zap.String("level", string(check.Level)))

	return check, nil
}

// ProcessChecker requires the running process to be root.
type ProcessChecker struct{}

// RequireRoot fails with a precondition error unless the effective uid is 0.
func (ProcessChecker) RequireRoot(ctx context.Context) error {
	check, err := CheckPrivileges(ctx)
	if err != nil {
		return err
	}
	if !check.IsRoot {
		return retire_err.Precondition(
			"re-run with sudo",
			"erasure requires root privileges, running as %s (uid %d)", check.Username, check.UserID)
	}
	return nil
}
