package controllers

import "errors"

var ErrNoPermission = errors.New("you do not have permission for this action")
