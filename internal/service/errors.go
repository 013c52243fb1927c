package service

import "errors"

// Kind стабильная категория ошибки, на которую опираются транспорты
type Kind string

const (
	KindNotFound                Kind = "NotFound"
	KindForbidden               Kind = "Forbidden"
	KindInvalidStateTransition  Kind = "InvalidStateTransition"
	KindDuplicatePendingRequest Kind = "DuplicatePendingRequest"
	KindValidation              Kind = "ValidationError"
	KindStoreUnavailable        Kind = "StoreUnavailable"
)

// Error ошибка сервиса: категория, код причины и сообщение для пользователя
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is сравнивает ошибки по коду, чтобы errors.Is работал и для ошибок валидации с разным текстом
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Ошибки предусловий
var (
	ErrSlotNotFound            = &Error{Kind: KindNotFound, Code: "SlotNotFound", Message: "slot not found"}
	ErrRequestNotFound         = &Error{Kind: KindNotFound, Code: "RequestNotFound", Message: "swap request not found"}
	ErrNotOwner                = &Error{Kind: KindForbidden, Code: "NotOwner", Message: "slot does not belong to you"}
	ErrNotRequestOwner         = &Error{Kind: KindForbidden, Code: "NotRequestOwner", Message: "only the owner of the requested slot can respond"}
	ErrSlotNotSwappable        = &Error{Kind: KindInvalidStateTransition, Code: "SlotNotSwappable", Message: "slots must be swappable"}
	ErrRequestNotPending       = &Error{Kind: KindInvalidStateTransition, Code: "RequestNotPending", Message: "swap request is not pending"}
	ErrInvalidTransition       = &Error{Kind: KindInvalidStateTransition, Code: "InvalidStateTransition", Message: "cannot toggle status while swap is pending"}
	ErrSlotSwapPending         = &Error{Kind: KindInvalidStateTransition, Code: "SlotSwapPending", Message: "cannot delete slot while swap is pending"}
	ErrDuplicatePendingRequest = &Error{Kind: KindDuplicatePendingRequest, Code: "DuplicatePendingRequest", Message: "request already exists"}
	ErrInvalidDecision         = &Error{Kind: KindValidation, Code: "InvalidDecision", Message: "invalid status"}
	ErrSelfSwap                = &Error{Kind: KindValidation, Code: "SelfSwap", Message: "cannot swap a slot with your own slot"}
	ErrValidation              = &Error{Kind: KindValidation, Code: "ValidationError", Message: "invalid input"}
	ErrStoreUnavailable        = &Error{Kind: KindStoreUnavailable, Code: "StoreUnavailable", Message: "store unavailable"}
)

func validationError(message string) error {
	return &Error{Kind: KindValidation, Code: ErrValidation.Code, Message: message}
}

// storeError пропускает ошибки сервиса как есть, остальные считает сбоем хранилища
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: KindStoreUnavailable, Code: ErrStoreUnavailable.Code, Message: op, Err: err}
}

// KindOf возвращает категорию ошибки. Ошибки не из этого пакета считаются StoreUnavailable.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindStoreUnavailable
}

// Message возвращает текст ошибки, безопасный для показа пользователю
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		if se.Kind == KindStoreUnavailable {
			return "service temporarily unavailable"
		}
		return se.Message
	}
	return "service temporarily unavailable"
}
