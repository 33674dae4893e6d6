package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/xo/dburl"
	"golang.org/x/crypto/ssh/terminal"
)

var AUTH AuthProvider = Auth{Providers: []AuthProvider{
	UrlContainsAuthInfo{},
	AskForMissing{In: os.Stdin, Out: os.Stderr},
}}

// initializeCredentialsIfMissing completes the user info of dbUrl and
// rebuilds its DSN.
func initializeCredentialsIfMissing(dbUrl *dburl.URL) (*dburl.URL, error) {
	if !AUTH.InitializeUserInfo(dbUrl) {
		log.Warnf("No authorization info - connection may fail")
		return dbUrl, nil
	}
	return dburl.Parse(dbUrl.String())
}

func redactUrl(s string) string {
	u, err := dburl.Parse(s)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}

type AuthProvider interface {
	InitializeUserInfo(url *dburl.URL) bool
}

type UrlContainsAuthInfo struct {
}

func (this UrlContainsAuthInfo) InitializeUserInfo(dbUrl *dburl.URL) bool {
	if dbUrl.User == nil {
		return false
	}
	_, passwordSet := dbUrl.User.Password()
	return dbUrl.User.Username() != "" && passwordSet
}

// AskForMissing prompts for the user name and password when In is a
// terminal.
type AskForMissing struct {
	In  *os.File
	Out io.Writer
}

func (this AskForMissing) InitializeUserInfo(dbUrl *dburl.URL) bool {
	if this.In == nil || !terminal.IsTerminal(int(this.In.Fd())) {
		return false
	}
	reader := bufio.NewReader(this.In)
	var err error

	userName := ""
	if dbUrl.User != nil {
		userName = dbUrl.User.Username()
	}
	if userName == "" {
		fmt.Fprint(this.Out, "Login: ")
		userName, err = reader.ReadString('\n')
		if err != nil {
			log.Error("Failed to read username ", err)
			return false
		}
		userName = strings.TrimSpace(userName)
	}

	password, passwordSet := "", false
	if dbUrl.User != nil {
		password, passwordSet = dbUrl.User.Password()
	}
	if !passwordSet {
		fmt.Fprint(this.Out, "Password: ")
		p, err := terminal.ReadPassword(int(this.In.Fd()))
		fmt.Fprintln(this.Out)
		if err != nil {
			log.Error("Failed to read password ", err)
			return false
		}
		password = string(p)
	}
	dbUrl.User = url.UserPassword(userName, password)
	return true
}

type Auth struct {
	Providers []AuthProvider
}

func (this Auth) InitializeUserInfo(url *dburl.URL) bool {
	for _, p := range this.Providers {
		if p.InitializeUserInfo(url) {
			return true
		}
	}
	return false
}
