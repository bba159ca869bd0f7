package main

import (
	"fmt"

	echoapi "github.com/trezcool/shule/apps/api/echo"
)

// mkToken prints a signed operator JWT for use against the API.
func (cli *commandLine) mkToken(id, name string, isTeacher, isAdmin bool) error {
	claims := echoapi.GetOperatorClaims(cli.conf, id, name, isTeacher, isAdmin)
	token, err := echoapi.GenerateToken(cli.conf, claims)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
