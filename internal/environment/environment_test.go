package environment_test

import (
	"context"
	"fmt"
	"os/exec"
	"testing"

	"github.com/seek-and-deploy/deployer/internal/discovery"
	"github.com/seek-and-deploy/deployer/internal/environment"
	"github.com/seek-and-deploy/deployer/internal/envname"
	"github.com/seek-and-deploy/deployer/internal/errors"
	"github.com/seek-and-deploy/deployer/pkg/log"
	"github.com/seek-and-deploy/deployer/tf"
	"github.com/seek-and-deploy/deployer/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	existing  map[string][]discovery.ResourceDescriptor
	tagErr    error
	remaining []discovery.ResourceDescriptor
	tagged    []string
}

func (fake *fakeOracle) Exists(_ context.Context, query discovery.Query) ([]discovery.ResourceDescriptor, error) {
	return fake.existing[query.Version], nil
}

func (fake *fakeOracle) ExistsInStates(context.Context, discovery.Query, ...string) ([]discovery.ResourceDescriptor, error) {
	return fake.remaining, nil
}

func (fake *fakeOracle) TagAsState(_ context.Context, _ discovery.Query, state string) (int, error) {
	fake.tagged = append(fake.tagged, state)
	return 1, fake.tagErr
}

type fakeTerraform struct {
	fail        map[tf.Action]error
	actions     []tf.Action
	remoteState bool
}

func (fake *fakeTerraform) Run(_ context.Context, action tf.Action, _ ...string) error {
	fake.actions = append(fake.actions, action)
	return fake.fail[action]
}

func (fake *fakeTerraform) HasRemoteState() bool {
	return fake.remoteState
}

type fakeStorage struct {
	deleted []string
}

func (fake *fakeStorage) DeleteFolder(_ context.Context, bucket, folder string) error {
	fake.deleted = append(fake.deleted, bucket+"/"+folder+"/")
	return nil
}

func (fake *fakeStorage) DeleteObject(_ context.Context, bucket, key string) error {
	fake.deleted = append(fake.deleted, bucket+"/"+key)
	return nil
}

var (
	resource = discovery.ResourceDescriptor{ARN: "arn:aws:s3:::dev-a", Service: "s3", ResourceID: "dev-a"}
	target   = environment.Target{Name: "dev", Version: "a", Discriminator: "web"}
	cleanup  = environment.Cleanup{DataBucket: "123-web-data", EnvFolder: "dev-a", StateBucket: "123-web-tfstate", StateKey: "dev-a.tfstate"}
)

func processError(t *testing.T) error {
	t.Helper()

	err := exec.Command("sh", "-c", "exit 1").Run()
	require.Error(t, err)

	return errors.New(util.ProcessExecutionError{Err: err, Command: "terraform", Args: []string{"apply"}})
}

func newOrchestrator(oracle *fakeOracle, terraform *fakeTerraform, storage *fakeStorage) *environment.Orchestrator {
	return environment.NewOrchestrator(oracle, terraform, storage, log.Discard())
}

func TestCreate(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{}
	terraform := &fakeTerraform{}

	require.NoError(t, newOrchestrator(oracle, terraform, &fakeStorage{}).Create(context.Background(), target))

	assert.Equal(t, []tf.Action{
		tf.ActionInit, tf.ActionGet, tf.ActionValidate, tf.ActionStatePull, tf.ActionPlan, tf.ActionApply,
	}, terraform.actions)
	assert.Equal(t, []string{discovery.StateRunning}, oracle.tagged)
}

func TestCreateSkipsInitWithRemoteState(t *testing.T) {
	t.Parallel()

	terraform := &fakeTerraform{remoteState: true, fail: map[tf.Action]error{tf.ActionStatePull: fmt.Errorf("no state")}} //nolint:err113

	require.NoError(t, newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{}).Create(context.Background(), target))

	assert.Equal(t, []tf.Action{
		tf.ActionGet, tf.ActionValidate, tf.ActionStatePull, tf.ActionPlan, tf.ActionApply,
	}, terraform.actions)
}

func TestCreateExistingEnvironment(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{existing: map[string][]discovery.ResourceDescriptor{"a": {resource}}}
	terraform := &fakeTerraform{}

	err := newOrchestrator(oracle, terraform, &fakeStorage{}).Create(context.Background(), target)

	var existsErr environment.EnvironmentExistsError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "dev-a", existsErr.Name)
	assert.Empty(t, terraform.actions)
	assert.Empty(t, oracle.tagged)
}

func TestCreateInvalidName(t *testing.T) {
	t.Parallel()

	terraform := &fakeTerraform{}

	err := newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{}).Create(context.Background(), environment.Target{Name: "dev", Version: "ab"})

	require.ErrorIs(t, err, envname.ErrInvalidName)
	assert.Empty(t, terraform.actions)
}

func TestCreatePrecheckFailure(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{}
	terraform := &fakeTerraform{fail: map[tf.Action]error{tf.ActionGet: processError(t)}}

	err := newOrchestrator(oracle, terraform, &fakeStorage{}).Create(context.Background(), target)

	require.Error(t, err)
	assert.Equal(t, []tf.Action{tf.ActionInit, tf.ActionGet}, terraform.actions)
	assert.Empty(t, oracle.tagged)
}

func TestCreateApplyFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		applyErr       error
		tagErr         error
		name           string
		expectedTagged []string
	}{
		{
			name:           "terraform ran",
			applyErr:       processError(t),
			expectedTagged: []string{discovery.StateRunning},
		},
		{
			name:           "tagging fails too",
			applyErr:       processError(t),
			tagErr:         fmt.Errorf("throttled"), //nolint:err113
			expectedTagged: []string{discovery.StateRunning},
		},
		{
			name:     "terraform did not start",
			applyErr: errors.New(util.ProcessExecutionError{Err: exec.ErrNotFound, Command: "terraform"}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			oracle := &fakeOracle{tagErr: tc.tagErr}
			terraform := &fakeTerraform{fail: map[tf.Action]error{tf.ActionApply: tc.applyErr}}

			err := newOrchestrator(oracle, terraform, &fakeStorage{}).Create(context.Background(), target)

			require.ErrorIs(t, err, tc.applyErr)
			assert.Equal(t, tc.expectedTagged, oracle.tagged)
		})
	}
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{existing: map[string][]discovery.ResourceDescriptor{"a": {resource}}}
	terraform := &fakeTerraform{remoteState: true}
	storage := &fakeStorage{}

	require.NoError(t, newOrchestrator(oracle, terraform, storage).Destroy(context.Background(), target, cleanup))

	assert.Equal(t, []tf.Action{
		tf.ActionGet, tf.ActionValidate, tf.ActionStatePull, tf.ActionPlanDestroy, tf.ActionDestroy,
	}, terraform.actions)
	assert.Equal(t, []string{discovery.StateDestroying}, oracle.tagged)
	assert.Equal(t, []string{"123-web-data/dev-a/", "123-web-tfstate/dev-a.tfstate"}, storage.deleted)
}

func TestDestroyMissingEnvironment(t *testing.T) {
	t.Parallel()

	terraform := &fakeTerraform{}

	err := newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{}).Destroy(context.Background(), target, cleanup)

	var notFound environment.EnvironmentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Empty(t, terraform.actions)
}

func TestDestroyKeepsStateOnFailure(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		destroyErr error
		name       string
		remaining  []discovery.ResourceDescriptor
	}{
		{name: "destroy failed", destroyErr: processError(t), remaining: []discovery.ResourceDescriptor{resource}},
		{name: "destroy failed and nothing remains", destroyErr: processError(t)},
		{name: "resources remain", remaining: []discovery.ResourceDescriptor{resource}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			oracle := &fakeOracle{
				existing:  map[string][]discovery.ResourceDescriptor{"a": {resource}},
				remaining: tc.remaining,
			}
			terraform := &fakeTerraform{fail: map[tf.Action]error{tf.ActionDestroy: tc.destroyErr}}
			storage := &fakeStorage{}

			err := newOrchestrator(oracle, terraform, storage).Destroy(context.Background(), target, cleanup)
			require.Error(t, err)

			if tc.destroyErr != nil {
				require.ErrorIs(t, err, tc.destroyErr)
			} else {
				var remainErr environment.ResourcesRemainError
				require.ErrorAs(t, err, &remainErr)
			}

			assert.Empty(t, storage.deleted)
		})
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()

	terraform := &fakeTerraform{remoteState: true}

	require.NoError(t, newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{}).Plan(context.Background(), target, environment.CommandPlan))
	assert.Equal(t, []tf.Action{tf.ActionGet, tf.ActionValidate, tf.ActionStatePull, tf.ActionPlan}, terraform.actions)
}

func TestOutput(t *testing.T) {
	t.Parallel()

	terraform := &fakeTerraform{}
	orch := newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{})

	require.NoError(t, orch.Output(context.Background(), "dns_name"))
	assert.Equal(t, []tf.Action{tf.ActionInit, tf.ActionOutput}, terraform.actions)

	terraform = &fakeTerraform{remoteState: true}
	orch = newOrchestrator(&fakeOracle{}, terraform, &fakeStorage{})

	require.NoError(t, orch.Output(context.Background()))
	assert.Equal(t, []tf.Action{tf.ActionOutput}, terraform.actions)
}

func TestAllocateAndReport(t *testing.T) {
	t.Parallel()

	oracle := &fakeOracle{existing: map[string][]discovery.ResourceDescriptor{
		"a": {resource},
		"b": {resource},
		"d": {resource},
	}}
	terraform := &fakeTerraform{}

	version, err := newOrchestrator(oracle, terraform, &fakeStorage{}).AllocateAndReport(context.Background(), "dev", "web")
	require.NoError(t, err)
	assert.Equal(t, "c", version)
	assert.Empty(t, terraform.actions)
	assert.Empty(t, oracle.tagged)
}

func TestNextVersion(t *testing.T) {
	t.Parallel()

	version, err := environment.NextVersion(context.Background(), "dev", "", func(context.Context, string, string, string) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a", version)

	calls := 0
	_, err = environment.NextVersion(context.Background(), "dev", "", func(context.Context, string, string, string) (bool, error) {
		calls++
		return true, nil
	})

	var exhausted environment.NoVersionsAvailableError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 26, calls)

	_, err = environment.NextVersion(context.Background(), "dev", "", func(context.Context, string, string, string) (bool, error) {
		return false, fmt.Errorf("denied") //nolint:err113
	})
	require.Error(t, err)
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected environment.Command
		wantErr  bool
	}{
		{input: "create", expected: environment.CommandCreate},
		{input: "Plan", expected: environment.CommandPlan},
		{input: "destroy", expected: environment.CommandDestroy},
		{input: "apply", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()

			command, err := environment.ParseCommand(tc.input)
			if tc.wantErr {
				var invalid environment.InvalidCommandError
				require.ErrorAs(t, err, &invalid)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, command)
		})
	}
}
