package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testBase = "/srv/api"

func TestParseRoute(t *testing.T) {
	testData := []struct {
		path     string
		expected Route
		err      error
	}{
		{"", Route{}, ErrEndpointNotFound},
		{"/", Route{}, ErrEndpointNotFound},
		{"/sample", Route{}, ErrEndpointNotFound},
		{"//sample//", Route{}, ErrEndpointNotFound},
		{"/sample/hello", Route{"sample", "hello"}, nil},
		{"sample/hello", Route{"sample", "hello"}, nil},
		{"//sample///hello/", Route{"sample", "hello"}, nil},
		{"/sample/hello/extra/segments", Route{"sample", "hello"}, nil},
		{"/..%2F..%2Fetc/passwd", Route{"../../etc", "passwd"}, nil},
		{"/sample/%2E%2E", Route{"sample", ".."}, nil},
		{"/sample/hello%20world", Route{"sample", "hello world"}, nil},
		{"/sample/%zz", Route{}, ErrEndpointNotFound},
	}

	for _, record := range testData {
		t.Run(record.path, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := ParseRoute(record.path)
			if record.err != nil {
				assert.ErrorIs(err, record.err)
				return
			}

			assert.NoError(err)
			assert.Equal(record.expected, actual)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("InvalidExtension", func(t *testing.T) {
		for _, ext := range []string{"", "so", "."} {
			_, err := New(afero.NewMemMapFs(), testBase, ext)
			assert.Error(t, err, ext)
		}
	})

	t.Run("RelativeBase", func(t *testing.T) {
		var (
			assert  = assert.New(t)
			require = require.New(t)
		)

		r, err := New(afero.NewMemMapFs(), "api/../api/", ".so")
		require.NoError(err)
		assert.True(filepath.IsAbs(r.Base()))
		assert.Equal("api", filepath.Base(r.Base()))
		assert.Equal(".so", r.Extension())
	})
}

type ResolverSuite struct {
	suite.Suite

	fs       afero.Fs
	resolver *Resolver
}

func (suite *ResolverSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()

	for _, name := range []string{
		"/srv/api/sample/sample.so",
		"/srv/api/sample/hello.so",
		"/srv/api/users/list.so",
		"/srv/api/toplevel.so",
		"/srv/api/sample/notes.txt",
		"/srv/api/sample/nested/deep.so",
		"/srv/secret.so",
		"/srv/etc/passwd.so",
	} {
		suite.Require().NoError(afero.WriteFile(suite.fs, name, []byte("unit"), 0o644))
	}

	suite.Require().NoError(suite.fs.MkdirAll("/srv/api/sample/dir.so", 0o755))

	var err error
	suite.resolver, err = New(suite.fs, testBase, ".so")
	suite.Require().NoError(err)
}

func (suite *ResolverSuite) TestResolve() {
	location, err := suite.resolver.Resolve("/sample/hello")
	suite.Require().NoError(err)
	suite.Equal(Route{"sample", "hello"}, location.Route)
	suite.Equal("/srv/api/sample/hello.so", location.Path)
}

func (suite *ResolverSuite) TestResolveIgnoresExtraSegments() {
	location, err := suite.resolver.Resolve("/users/list/42/details")
	suite.Require().NoError(err)
	suite.Equal("/srv/api/users/list.so", location.Path)
}

func (suite *ResolverSuite) TestResolveIdempotent() {
	first, firstErr := suite.resolver.Resolve("/sample/sample")
	second, secondErr := suite.resolver.Resolve("/sample/sample")
	suite.NoError(firstErr)
	suite.NoError(secondErr)
	suite.Equal(first, second)

	_, firstErr = suite.resolver.Resolve("/sample/missing")
	_, secondErr = suite.resolver.Resolve("/sample/missing")
	suite.ErrorIs(firstErr, ErrHandlerNotFound)
	suite.ErrorIs(secondErr, ErrHandlerNotFound)
}

func (suite *ResolverSuite) TestEndpointNotFound() {
	for _, path := range []string{"", "/", "/sample", "/toplevel", "///"} {
		_, err := suite.resolver.Resolve(path)
		suite.ErrorIs(err, ErrEndpointNotFound, path)
	}
}

func (suite *ResolverSuite) TestForbidden() {
	for _, path := range []string{
		// these targets exist outside the base
		"/../secret",
		"/%2E%2E/secret",
		"/sample/..%2F..%2Fsecret",
		"/sample/..%2F..%2Fetc%2Fpasswd",
		"/..%2F..%2Fsrv%2Fetc/passwd",
		// these do not exist anywhere
		"/sample/..%2F..%2F..%2F..%2Fetc%2Fshadow",
		"/..%2Fapi%2F..%2F../nothing",
	} {
		_, err := suite.resolver.Resolve(path)
		suite.ErrorIs(err, ErrForbidden, path)
		suite.False(errors.Is(err, ErrHandlerNotFound), path)
	}
}

func (suite *ResolverSuite) TestContainedDotSegments() {
	// "." and ".." that stay inside the base are not traversal attempts
	location, err := suite.resolver.Resolve("/sample/..%2Fusers%2Flist")
	suite.Require().NoError(err)
	suite.Equal("/srv/api/users/list.so", location.Path)

	_, err = suite.resolver.Resolve("/./toplevel")
	suite.Require().NoError(err)

	_, err = suite.resolver.Resolve("/sample/..")
	suite.ErrorIs(err, ErrHandlerNotFound)
}

func (suite *ResolverSuite) TestHandlerNotFound() {
	for _, path := range []string{
		"/sample/missing",
		"/missing/sample",
		"/sample/notes",
		"/sample/dir",
		"/sample/nested",
	} {
		_, err := suite.resolver.Resolve(path)
		suite.ErrorIs(err, ErrHandlerNotFound, path)
	}
}

func (suite *ResolverSuite) TestCheck() {
	suite.NoError(suite.resolver.Check())

	missing, err := New(suite.fs, "/srv/nothing", ".so")
	suite.Require().NoError(err)
	suite.Error(missing.Check())

	file, err := New(suite.fs, "/srv/secret.so", ".so")
	suite.Require().NoError(err)
	suite.Error(file.Check())
}

func (suite *ResolverSuite) TestScan() {
	routes, err := suite.resolver.Scan()
	suite.Require().NoError(err)
	suite.Equal(
		[]Route{
			{"sample", "hello"},
			{"sample", "sample"},
			{"users", "list"},
		},
		routes,
	)

	for _, route := range routes {
		_, err := suite.resolver.ResolveRoute(route)
		suite.NoError(err, route.String())
	}
}

func (suite *ResolverSuite) TestScanMissingBase() {
	missing, err := New(suite.fs, "/srv/nothing", ".so")
	suite.Require().NoError(err)

	_, err = missing.Scan()
	suite.Error(err)
}

func TestScanFollowsSymlinks(t *testing.T) {
	var (
		assert  = assert.New(t)
		require = require.New(t)

		root = t.TempDir()
	)

	// api -> tree, tree/linked -> shared, tree/sample/alias.so -> tree/sample/hello.so
	tree := filepath.Join(root, "tree")
	shared := filepath.Join(root, "shared")
	require.NoError(os.MkdirAll(filepath.Join(tree, "sample"), 0o755))
	require.NoError(os.MkdirAll(shared, 0o755))
	require.NoError(os.WriteFile(filepath.Join(tree, "sample", "hello.so"), []byte("unit"), 0o644))
	require.NoError(os.WriteFile(filepath.Join(shared, "x.so"), []byte("unit"), 0o644))

	if err := os.Symlink(tree, filepath.Join(root, "api")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(os.Symlink(shared, filepath.Join(tree, "linked")))
	require.NoError(os.Symlink(filepath.Join(tree, "sample", "hello.so"), filepath.Join(tree, "sample", "alias.so")))
	require.NoError(os.Symlink(filepath.Join(root, "missing"), filepath.Join(tree, "dangling")))

	r, err := New(afero.NewOsFs(), filepath.Join(root, "api"), ".so")
	require.NoError(err)

	routes, err := r.Scan()
	require.NoError(err)
	assert.Equal(
		[]Route{
			{"linked", "x"},
			{"sample", "alias"},
			{"sample", "hello"},
		},
		routes,
	)

	// Everything listed is also served.
	for _, route := range routes {
		_, err := r.ResolveRoute(route)
		assert.NoError(err, route.String())
	}
}

func TestResolver(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}
