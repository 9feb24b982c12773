/*
 * Copyright 2025 Humaid Alqasimi
 * SPDX-License-Identifier: Apache-2.0
 */
package routes

import (
	"encoding/gob"

	"github.com/flamego/session"
)

// FlashType represents the type of flash message
type FlashType string

const (
	FlashError   FlashType = "error"
	FlashSuccess FlashType = "success"
	FlashWarning FlashType = "warning"
	FlashInfo    FlashType = "info"
)

// FlashMessage is shown once on the next rendered page
type FlashMessage struct {
	Type    FlashType
	Message string
}

func init() {
	gob.Register(FlashMessage{})
}

func setFlash(s session.Session, typ FlashType, message string) {
	s.SetFlash(FlashMessage{Type: typ, Message: message})
}

// SetErrorFlash queues an error message
func SetErrorFlash(s session.Session, message string) { setFlash(s, FlashError, message) }

// SetSuccessFlash queues a success message
func SetSuccessFlash(s session.Session, message string) { setFlash(s, FlashSuccess, message) }

// SetWarningFlash queues a warning message
func SetWarningFlash(s session.Session, message string) { setFlash(s, FlashWarning, message) }

// SetInfoFlash queues an informational message
func SetInfoFlash(s session.Session, message string) { setFlash(s, FlashInfo, message) }
