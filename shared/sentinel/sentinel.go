package sentinel

import "errors"

// Sentinel errors shared by stores, services and handlers. Lower layers return
// them wrapped with context; handlers translate them with errors.Is.
//
//   - ErrNotFound: missing or soft-deleted account, missing transaction, or an
//     account that has not passed screening
//   - ErrInvalid: malformed identifier or a transaction that fails admission
//   - ErrConfiguration: fatal misconfiguration (e.g. account prefix too long)
//   - ErrDispatch: the outbound screening call could not be queued or sent
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalid       = errors.New("invalid")
	ErrConfiguration = errors.New("configuration error")
	ErrDispatch      = errors.New("screening dispatch failed")
)
