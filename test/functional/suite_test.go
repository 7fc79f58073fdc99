package functional

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cucumber/godog"

	"github.com/tsukumogami/gpudrv/internal/drivers"
	"github.com/tsukumogami/gpudrv/internal/platform"
	"github.com/tsukumogami/gpudrv/internal/testutil"
)

type stateKeyType struct{}

var stateKey = stateKeyType{}

type testState struct {
	// in-process scenarios
	root       string
	runner     *testutil.FakeRunner
	vendor     platform.Vendor
	manager    platform.PackageManager
	managerErr error
	catalog    *drivers.Catalog
	listing    drivers.Listing
	queryErr   error

	// binary scenarios
	binPath  string
	workDir  string
	exitCode int

	stdout string
	stderr string
}

func getState(ctx context.Context) *testState {
	if s, ok := ctx.Value(stateKey).(*testState); ok {
		return s
	}
	return nil
}

func setState(ctx context.Context, s *testState) context.Context {
	return context.WithValue(ctx, stateKey, s)
}

// TestFeatures runs the feature files. Scenarios tagged @binary exec the
// built gpudrv binary and only run when GPUDRV_TEST_BINARY names it; the
// rest drive the packages in-process against a scripted runner.
func TestFeatures(t *testing.T) {
	opts := &godog.Options{
		Format:   "pretty",
		Paths:    []string{"features"},
		TestingT: t,
	}

	binPath := os.Getenv("GPUDRV_TEST_BINARY")
	if binPath != "" {
		// Resolve to absolute path since go test changes the working directory
		absBin, err := filepath.Abs(binPath)
		if err != nil {
			t.Fatalf("resolving binary path: %v", err)
		}
		binPath = absBin
	} else {
		opts.Tags = "~@binary"
	}
	if tags := os.Getenv("GPUDRV_TEST_TAGS"); tags != "" {
		opts.Tags = tags
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			initializeScenario(ctx, binPath)
		},
		Options: opts,
	}
	if suite.Run() != 0 {
		t.Fatal("functional tests failed")
	}
}

func initializeScenario(ctx *godog.ScenarioContext, binPath string) {
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		root, err := os.MkdirTemp("", "gpudrv-root-")
		if err != nil {
			return ctx, err
		}
		workDir, err := os.MkdirTemp("", "gpudrv-work-")
		if err != nil {
			return ctx, err
		}
		state := &testState{
			root:    root,
			runner:  testutil.NewFakeRunner(),
			binPath: binPath,
			workDir: workDir,
		}
		return setState(ctx, state), nil
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if state := getState(ctx); state != nil {
			os.RemoveAll(state.root)
			os.RemoveAll(state.workDir)
		}
		return ctx, nil
	})

	// Environment steps
	ctx.Step(`^a system with "([^"]*)"$`, aSystemWith)
	ctx.Step(`^a system with "([^"]*)" and "([^"]*)"$`, aSystemWithBoth)
	ctx.Step(`^the file "([^"]*)" contains "([^"]*)"$`, theFileContains)
	ctx.Step(`^the PCI device "([^"]*)" has vendor "([^"]*)" and class "([^"]*)"$`, thePCIDeviceHas)
	ctx.Step(`^an? (NVIDIA|AMD) GPU managed by (apt|yum|pacman)$`, aGPUManagedBy)
	ctx.Step(`^the command "([^"]*)" outputs:$`, theCommandOutputs)
	ctx.Step(`^the command "([^"]*)" outputs "([^"]*)"$`, theCommandOutputsLine)
	ctx.Step(`^the command "([^"]*)" fails with "([^"]*)"$`, theCommandFailsWith)
	ctx.Step(`^the command "([^"]*)" warns "([^"]*)"$`, theCommandWarns)
	ctx.Step(`^the tests are not running as root$`, theTestsAreNotRunningAsRoot)

	// Action steps
	ctx.Step(`^I detect the package manager$`, iDetectThePackageManager)
	ctx.Step(`^I detect the GPU vendor$`, iDetectTheGPUVendor)
	ctx.Step(`^the package manager prints:$`, thePackageManagerPrints)
	ctx.Step(`^I query the driver catalog$`, iQueryTheDriverCatalog)
	ctx.Step(`^I refresh the driver catalog$`, iRefreshTheDriverCatalog)
	ctx.Step(`^I use the menu with input:$`, iUseTheMenuWithInput)
	ctx.Step(`^I run "([^"]*)"$`, iRun)

	// Assertion steps
	ctx.Step(`^the package manager is "([^"]*)"$`, thePackageManagerIs)
	ctx.Step(`^package manager detection fails with "([^"]*)"$`, packageManagerDetectionFailsWith)
	ctx.Step(`^the GPU vendor is "([^"]*)"$`, theGPUVendorIs)
	ctx.Step(`^the listing is "([^"]*)"$`, theListingIs)
	ctx.Step(`^the listing is empty$`, theListingIsEmpty)
	ctx.Step(`^the newest driver is "([^"]*)"$`, theNewestDriverIs)
	ctx.Step(`^the command "([^"]*)" ran (\d+) times?$`, theCommandRanTimes)
	ctx.Step(`^the exit code is (\d+)$`, theExitCodeIs)
	ctx.Step(`^the output contains "([^"]*)"$`, theOutputContains)
	ctx.Step(`^the output does not contain "([^"]*)"$`, theOutputDoesNotContain)
	ctx.Step(`^the error output contains "([^"]*)"$`, theErrorOutputContains)
}
