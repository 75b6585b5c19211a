package storefront_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/storesdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared flows for the storefront end-to-end tests.
 * The sandbox image is built once and every test gets its own container.
 */

const (
	testImageName = "storefront-sandbox-test:latest"

	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	userPassword  = "password123"
)

// TestMain builds the Docker image once before all tests and removes it
// after they complete.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building sandbox Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up sandbox Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/sandbox/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run() // image might not exist
}

// setupSandbox starts the sandbox with relaxed rate limits and returns its
// base URL. extra overrides or adds environment variables.
func setupSandbox(t *testing.T, extra map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"SANDBOX_ADMIN_EMAIL":    adminEmail,
		"SANDBOX_ADMIN_PASSWORD": adminPassword,
		"SANDBOX_EXPOSE_OTP":     "true",
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
		// Tests register and log in far faster than the production limits allow.
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_WINDOW_SEC": "60",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
	for k, v := range extra {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// newClient returns a client that only refreshes after the server rejects
// a token, so tests observe the reactive path.
func newClient(baseURL string) *storesdk.Client {
	c := storesdk.NewClient(baseURL)
	c.RefreshBuffer = 0
	return c
}

// registerCustomer creates and verifies an account, then logs in.
func registerCustomer(t *testing.T, baseURL, username string) *storesdk.Client {
	t.Helper()
	ctx := context.Background()
	c := newClient(baseURL)
	email := username + "@example.com"

	reg, err := c.Register(ctx, storesdk.RegisterRequest{Username: username, Email: email, Password: userPassword})
	require.NoError(t, err)
	require.NotEmpty(t, reg.DebugOTP, "sandbox should expose the OTP")

	_, err = c.VerifyOTP(ctx, email, reg.DebugOTP)
	require.NoError(t, err)

	_, err = c.Login(ctx, email, userPassword)
	require.NoError(t, err)
	return c
}

func loginAdmin(t *testing.T, baseURL string) *storesdk.Client {
	t.Helper()
	c := newClient(baseURL)
	s, err := c.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, s.User.IsAdmin)
	return c
}

func addAddress(t *testing.T, c *storesdk.Client) int64 {
	t.Helper()
	a, err := c.CreateAddress(context.Background(), storesdk.Address{
		Phone:       "9876543210",
		AddressType: "home",
		Street:      "1 George St",
		City:        "Sydney",
		State:       "NSW",
		ZipCode:     "2000",
		IsDefault:   true,
	})
	require.NoError(t, err)
	return a.ID
}

func productNamed(t *testing.T, c *storesdk.Client, name string) storesdk.Product {
	t.Helper()
	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	for _, p := range products {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("product %q not in catalog", name)
	return storesdk.Product{}
}

// screenshot renders a small PNG that passes content sniffing.
func screenshot(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := range 8 {
		img.Set(x, x, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// requireKind asserts err is an APIError of kind k and returns it.
func requireKind(t *testing.T, err error, k storesdk.Kind) *storesdk.APIError {
	t.Helper()
	require.Error(t, err)
	var apiErr *storesdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, k, apiErr.Kind, "unexpected error: %v", err)
	return apiErr
}
