package tests

import (
    "testing"

    "github.com/cucumber/godog"
)

func TestPlaceOrder(t *testing.T) {

    suite := godog.TestSuite{
        ScenarioInitializer: initializeCommonSteps,
        Options: &godog.Options{
            Format:   "pretty",
            Paths:    []string{"features/place_order.feature"},
            TestingT: t, // Testing instance that will run subtests.
        },
    }

    if suite.Run() != 0 {
        t.Fatal("non-zero status returned, failed to run feature tests")
    }
}
