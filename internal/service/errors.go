package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/nurpe/logist-zp/internal/db"
	"github.com/nurpe/logist-zp/internal/model"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
)

// notFound turns gorm's missing-row error into ErrNotFound naming the entity.
func notFound(err error, entity string, id int64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %d", ErrNotFound, entity, id)
	}
	return err
}

// storeError maps constraint violations raised by the store: unique indexes
// become ErrConflict described by format, broken references ErrInvalidInput.
func storeError(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: unknown reference: %v", ErrInvalidInput, err)
	default:
		return err
	}
}

// transition checks from -> to against table for the actor.
func transition[S ~string](table model.TransitionTable[S], entity string, id int64, from, to S, actor model.Principal) error {
	gate, ok := table.Lookup(from, to)
	if !ok {
		return fmt.Errorf("%w: %s %d cannot move from %s to %s", ErrInvalidState, entity, id, from, to)
	}
	switch gate {
	case model.GateUser:
		return nil
	case model.GateAdmin:
		if actor.IsAdmin() {
			return nil
		}
		return fmt.Errorf("%w: %s %d is %s, only admin may move it to %s", ErrPermissionDenied, entity, id, from, to)
	default:
		return fmt.Errorf("%w: %s %d moves from %s to %s only through payroll", ErrInvalidState, entity, id, from, to)
	}
}

func requireRole(actor model.Principal, action string, roles ...model.Role) error {
	if actor.HasRole(roles...) {
		return nil
	}
	return fmt.Errorf("%w: role %q cannot %s", ErrPermissionDenied, actor.Role, action)
}

var elevatedRoles = []model.Role{model.RoleAdmin, model.RoleDispatcher}
