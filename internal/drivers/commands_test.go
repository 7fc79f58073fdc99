package drivers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsukumogami/gpudrv/internal/executor"
	"github.com/tsukumogami/gpudrv/internal/platform"
)

var allManagers = []platform.PackageManager{platform.Apt, platform.Yum, platform.Pacman}

func TestSearchCommand(t *testing.T) {
	tests := []struct {
		manager platform.PackageManager
		vendor  platform.Vendor
		want    string
	}{
		{platform.Apt, platform.VendorNVIDIA, "apt-cache search '^nvidia-driver-[0-9]+'"},
		{platform.Apt, platform.VendorAMD, "apt-cache search '^amdgpu-*'"},
		{platform.Yum, platform.VendorNVIDIA, "yum list available"},
		{platform.Yum, platform.VendorAMD, "yum list available"},
		{platform.Pacman, platform.VendorNVIDIA, "pacman -Ssq nvidia"},
		{platform.Pacman, platform.VendorAMD, "pacman -Ssq amd"},
	}

	for _, tt := range tests {
		t.Run(tt.manager.String()+"/"+tt.vendor.String(), func(t *testing.T) {
			cmd, err := SearchCommand(tt.manager, tt.vendor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
		})
	}
}

func TestCommandsCoverEveryManager(t *testing.T) {
	for _, m := range allManagers {
		builders := map[string]func() (executor.Command, error){
			"install":   func() (executor.Command, error) { return InstallCommand(m, "drv") },
			"uninstall": func() (executor.Command, error) { return UninstallCommand(m, "drv") },
			"refresh":   func() (executor.Command, error) { return RefreshCommand(m) },
			"installed": func() (executor.Command, error) { return InstalledCommand(m) },
			"upgrade": func() (executor.Command, error) {
				return UpgradeCommand(m, platform.VendorNVIDIA, Listing{"drv"})
			},
		}
		for name, build := range builders {
			cmd, err := build()
			require.NoError(t, err, "%s for %s", name, m)
			assert.NotEmpty(t, cmd.Name, "%s for %s", name, m)
		}
	}
}

func TestCommandsRejectUnknownManager(t *testing.T) {
	var none platform.PackageManager

	_, err := InstallCommand(none, "drv")
	assert.ErrorIs(t, err, platform.ErrUnsupportedPackageManager)
	_, err = UninstallCommand(none, "drv")
	assert.ErrorIs(t, err, platform.ErrUnsupportedPackageManager)
	_, err = RefreshCommand(none)
	assert.ErrorIs(t, err, platform.ErrUnsupportedPackageManager)
	_, err = SearchCommand(none, platform.VendorNVIDIA)
	assert.ErrorIs(t, err, platform.ErrUnsupportedPackageManager)
}

func TestDriverIsSingleArgument(t *testing.T) {
	hostile := "nvidia-driver-550; rm -rf /"
	for _, m := range allManagers {
		install, err := InstallCommand(m, hostile)
		require.NoError(t, err)
		uninstall, err := UninstallCommand(m, hostile)
		require.NoError(t, err)

		assert.Equal(t, hostile, install.Args[len(install.Args)-1])
		assert.Equal(t, hostile, uninstall.Args[len(uninstall.Args)-1])
	}
}

func TestInstallCommands(t *testing.T) {
	tests := []struct {
		manager platform.PackageManager
		want    []string
		wantEnv []string
	}{
		{platform.Apt, []string{"apt-get", "install", "-y", "nvidia-driver-550"}, []string{"DEBIAN_FRONTEND=noninteractive"}},
		{platform.Yum, []string{"yum", "install", "-y", "nvidia-driver-550"}, nil},
		{platform.Pacman, []string{"pacman", "-S", "--noconfirm", "nvidia-driver-550"}, nil},
	}
	for _, tt := range tests {
		cmd, err := InstallCommand(tt.manager, "nvidia-driver-550")
		require.NoError(t, err)
		assert.Equal(t, tt.want, cmd.Argv())
		assert.Equal(t, tt.wantEnv, cmd.Env)
	}
}

func TestUninstallCommands(t *testing.T) {
	tests := []struct {
		manager platform.PackageManager
		want    []string
	}{
		{platform.Apt, []string{"apt-get", "purge", "-y", "x"}},
		{platform.Yum, []string{"yum", "remove", "-y", "x"}},
		{platform.Pacman, []string{"pacman", "-R", "--noconfirm", "x"}},
	}
	for _, tt := range tests {
		cmd, err := UninstallCommand(tt.manager, "x")
		require.NoError(t, err)
		assert.Equal(t, tt.want, cmd.Argv())
	}
}

func TestUpgradeCommandGlobs(t *testing.T) {
	cmd, err := UpgradeCommand(platform.Apt, platform.VendorNVIDIA, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-get", "upgrade", "-y", "nvidia-driver-*"}, cmd.Argv())

	cmd, err = UpgradeCommand(platform.Apt, platform.VendorAMD, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"apt-get", "upgrade", "-y", "amdgpu*"}, cmd.Argv())

	_, err = UpgradeCommand(platform.Apt, platform.VendorUnknown, nil)
	assert.ErrorIs(t, err, platform.ErrNoSupportedGPU)
}

func TestStatusCommand(t *testing.T) {
	cmd, err := StatusCommand(platform.VendorNVIDIA)
	require.NoError(t, err)
	assert.Equal(t, "nvidia-smi", cmd.Name)

	cmd, err = StatusCommand(platform.VendorAMD)
	require.NoError(t, err)
	assert.Equal(t, []string{"modinfo", "-F", "version", "amdgpu"}, cmd.Argv())

	_, err = StatusCommand(platform.VendorUnknown)
	assert.ErrorIs(t, err, platform.ErrNoSupportedGPU)
}
