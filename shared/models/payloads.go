package models

import "github.com/mbhbank/account-service/shared/accountnumber"

// ScreeningDispatch is the body POSTed to the external screener.
type ScreeningDispatch struct {
	AccountNumber     accountnumber.Number `json:"accountNumber"`
	AccountHolderName string               `json:"accountHolderName"`
	CallbackURL       string               `json:"callbackUrl"`
}

// ScreeningCallback is the body the screener POSTs back to the callback URL.
type ScreeningCallback struct {
	AccountNumber          accountnumber.Number `json:"accountNumber"`
	IsSecurityCheckSuccess bool                 `json:"isSecurityCheckSuccess"`
}
