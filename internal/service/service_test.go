package service

import (
	"lookup_bot/internal/webclient"
)

func response(status int, body string) webclient.Response {
	return webclient.Response{Status: status, Body: []byte(body)}
}
