package solver

import "github.com/sirupsen/logrus"

var Log = logrus.New()

type void struct{}

type set[T comparable] map[T]void
