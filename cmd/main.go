package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"quizboard-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		logrus.WithError(err).Error("quizboard failed")
		os.Exit(1)
	}
}
