package service

import "fmt"

func welcomeEmailTemplate(appURL, appName string) (string, string) {
	subject := fmt.Sprintf("Welcome to %s!", appName)
	body := fmt.Sprintf(`Hi,

Your account is active. Sign in with your email and password to start
defining attributes and tracking your assets.

API: %s/api

Best,
The %s Team`, appURL, appName)

	return subject, body
}
