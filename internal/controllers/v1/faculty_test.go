package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	v1 "github.com/unifin/backend/internal/controllers/v1"
	"github.com/unifin/backend/test"
)

// TestFacultiesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestFacultiesDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestFaculty(t, v1.FacultyEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, http.MethodGet, "/v1/faculties", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestFacultiesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestFacultiesOptions() {
	tests := []struct {
		name   string
		id     string // path at the faculties endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No faculty with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Faculty exists", createTestFaculty(suite.T(), v1.FacultyEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "/v1/faculties", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestFacultiesCreate() {
	faculty := createTestFaculty(suite.T(), v1.FacultyEditable{Name: "Engineering", Code: "ENG"})

	suite.Assert().Equal("Engineering", faculty.Data.Name)
	suite.Assert().Equal("ENG", faculty.Data.Code)
	suite.Assert().NotEqual(uuid.Nil, faculty.Data.ID)
}

func (suite *TestSuiteStandard) TestFacultiesCreateDuplicate() {
	_ = createTestFaculty(suite.T(), v1.FacultyEditable{Name: "Engineering", Code: "ENG"})

	r := test.Request(suite.T(), http.MethodPost, "/v1/faculties", v1.FacultyEditable{Name: "Engineering", Code: "ENG-2"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)
}

func (suite *TestSuiteStandard) TestFacultiesGetSingle() {
	faculty := createTestFaculty(suite.T(), v1.FacultyEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing faculty", faculty.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET No faculty with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("/v1/faculties/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestFacultiesGetAll() {
	_ = createTestFaculty(suite.T(), v1.FacultyEditable{Name: "Science"})
	_ = createTestFaculty(suite.T(), v1.FacultyEditable{Name: "Arts"})

	r := test.Request(suite.T(), http.MethodGet, "/v1/faculties", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.FacultyListResponse
	test.DecodeResponse(suite.T(), &r, &response)

	// Sorted by name
	suite.Require().Len(response.Data, 2)
	suite.Assert().Equal("Arts", response.Data[0].Name)
	suite.Assert().Equal("Science", response.Data[1].Name)
}

func (suite *TestSuiteStandard) TestFacultiesUpdate() {
	faculty := createTestFaculty(suite.T(), v1.FacultyEditable{Name: "Engineering"})

	r := test.Request(suite.T(), http.MethodPatch, fmt.Sprintf("/v1/faculties/%s", faculty.Data.ID), map[string]string{
		"name": "School of Engineering",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.FacultyResponse
	test.DecodeResponse(suite.T(), &r, &updated)

	suite.Assert().Equal("School of Engineering", updated.Data.Name)
	suite.Assert().Equal(faculty.Data.Code, updated.Data.Code, "Code changed even though it was not in the request")
}

func (suite *TestSuiteStandard) TestFacultiesDelete() {
	faculty := createTestFaculty(suite.T(), v1.FacultyEditable{})

	r := test.Request(suite.T(), http.MethodDelete, fmt.Sprintf("/v1/faculties/%s", faculty.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("/v1/faculties/%s", faculty.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
