package main

import (
	"fmt"
	"strings"

	"github.com/sangkips/invoicer/pkg/apperror"
)

// describe flattens field errors into one readable line
func describe(err error) error {
	if !apperror.IsAppError(err) {
		return err
	}
	appErr := apperror.GetAppError(err)
	if len(appErr.Errors) == 0 {
		return err
	}
	parts := make([]string, 0, len(appErr.Errors))
	for _, fe := range appErr.Errors {
		parts = append(parts, fe.Field+" "+fe.Message)
	}
	return fmt.Errorf("%s: %s", appErr.Message, strings.Join(parts, "; "))
}
