package tytalb

import (
	"errors"

	"github.com/Vogelwarte/tytalb/annotation"
	"github.com/Vogelwarte/tytalb/reconcile"
)

// Sentinel errors for conditions callers may need to handle differently.
var (
	// ErrConfiguration indicates options that cannot describe a valid run,
	// such as binary mode without positive labels.
	ErrConfiguration = errors.New("tytalb: configuration error")

	// ErrIntegrity indicates a malformed segment in the input. The wrapped
	// *reconcile.IntegrityError names the recording and the segment.
	ErrIntegrity = reconcile.ErrIntegrity

	// ErrNoPositive is reported in Result.Warnings, never returned, when a
	// binary run finds no segment carrying a positive label.
	ErrNoPositive = annotation.ErrNoPositive
)
