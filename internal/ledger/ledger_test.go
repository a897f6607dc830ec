package ledger_test

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/unifin/backend/internal/ledger"
	"github.com/unifin/backend/internal/models"
)

func (suite *TestSuiteStandard) TestEnroll() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	enrollment, balance, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	suite.Assert().Equal(models.EnrollmentActive, enrollment.Status)
	suite.Assert().True(enrollment.CourseFee.Equal(decimal.NewFromInt(2500)), "Fee snapshot is %s, should be 2500", enrollment.CourseFee)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(2500)), "Balance is %s, should be 2500", balance)

	suite.assertBalance(student.ID, decimal.NewFromInt(2500))

	var notifications []models.Notification
	suite.Require().Nil(models.DB.Where("student_id = ?", student.ID).Find(&notifications).Error)
	suite.Require().Len(notifications, 1)
	suite.Assert().Equal(models.NotificationEnrollment, notifications[0].Type)

	var actions []models.ActionLog
	suite.Require().Nil(models.DB.Where("student_id = ?", student.ID).Find(&actions).Error)
	suite.Require().Len(actions, 1)
	suite.Assert().Equal(models.ActionEnrollment, actions[0].Type)
}

func (suite *TestSuiteStandard) TestEnrollFeeSnapshot() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	// Raising the course fee must not change what the student owes
	err = models.DB.Model(&course).Select("TotalFee").Updates(models.Course{TotalFee: decimal.NewFromInt(9999)}).Error
	suite.Require().Nil(err)

	suite.assertBalance(student.ID, decimal.NewFromInt(2500))
}

func (suite *TestSuiteStandard) TestEnrollTwice() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.Enroll(student.ID, course.ID)
	suite.Assert().ErrorIs(err, models.ErrAlreadyEnrolled)

	// The failed enrollment must not have touched the balance
	suite.assertBalance(student.ID, decimal.NewFromInt(2500))
}

func (suite *TestSuiteStandard) TestEnrollAdmin() {
	admin := suite.createTestAdmin()
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(admin.ID, course.ID)
	suite.Assert().ErrorIs(err, models.ErrNoStudent)
}

func (suite *TestSuiteStandard) TestDrop() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))
	other := suite.createTestCourse(decimal.NewFromInt(1000))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)
	_, _, err = ledger.Enroll(student.ID, other.ID)
	suite.Require().Nil(err)

	balance, err := ledger.Drop(student.ID, course.ID)
	suite.Require().Nil(err)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(1000)), "Balance is %s, should be 1000", balance)

	suite.assertBalance(student.ID, decimal.NewFromInt(1000))
}

func (suite *TestSuiteStandard) TestDropAllowsReenrollment() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	_, err = ledger.Drop(student.ID, course.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.Enroll(student.ID, course.ID)
	suite.Assert().Nil(err)

	suite.assertBalance(student.ID, decimal.NewFromInt(2500))
}

func (suite *TestSuiteStandard) TestDropAfterPayment() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))
	other := suite.createTestCourse(decimal.NewFromInt(1000))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)
	_, _, err = ledger.Enroll(student.ID, other.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(500), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)

	// Any payment on record makes every course undroppable, not just the
	// one the payment was meant for
	_, err = ledger.Drop(student.ID, other.ID)
	suite.Assert().ErrorIs(err, models.ErrDropAfterPayment)

	suite.assertBalance(student.ID, decimal.NewFromInt(3000))
}

func (suite *TestSuiteStandard) TestRemoveCourse() {
	student := suite.createTestStudent(models.User{})
	other := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)
	_, _, err = ledger.Enroll(other.ID, course.ID)
	suite.Require().Nil(err)

	err = ledger.RemoveCourse(course.ID)
	suite.Require().Nil(err)

	suite.assertBalance(student.ID, decimal.Zero)
	suite.assertBalance(other.ID, decimal.Zero)

	var enrollments int64
	suite.Require().Nil(models.DB.Unscoped().Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	suite.Assert().Zero(enrollments)

	err = models.DB.First(&models.Course{}, "id = ?", course.ID).Error
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	var notifications []models.Notification
	suite.Require().Nil(models.DB.Where("student_id = ? AND type = ?", student.ID, models.NotificationCourseDropped).Find(&notifications).Error)
	suite.Assert().Len(notifications, 1)
}

// Removing a course is an administrative action, the drop restriction for
// students with payments on record does not apply.
func (suite *TestSuiteStandard) TestRemoveCourseAfterPayment() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))
	other := suite.createTestCourse(decimal.NewFromInt(1000))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)
	_, _, err = ledger.Enroll(student.ID, other.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(500), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)

	err = ledger.RemoveCourse(other.ID)
	suite.Require().Nil(err)

	suite.assertBalance(student.ID, decimal.NewFromInt(2000))
}

// A refund larger than the remaining balance clamps at zero.
func (suite *TestSuiteStandard) TestRemoveCourseClamps() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(2000), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)

	err = ledger.RemoveCourse(course.ID)
	suite.Require().Nil(err)

	suite.assertBalance(student.ID, decimal.Zero)
}

func (suite *TestSuiteStandard) TestRemoveCourseNotFound() {
	err := ledger.RemoveCourse(uuid.New())
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestDropNotEnrolled() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, err := ledger.Drop(student.ID, course.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestRecordPayment() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	payment, balance, err := ledger.RecordPayment(student.ID, decimal.NewFromInt(1000), models.PaymentMethodManual, "", "partial payment")
	suite.Require().Nil(err)

	suite.Assert().Equal(models.PaymentReceived, payment.Status)
	suite.Assert().Equal(&student.ID, payment.RecordedByID)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(1500)), "Balance is %s, should be 1500", balance)

	suite.assertBalance(student.ID, decimal.NewFromInt(1500))
}

func (suite *TestSuiteStandard) TestRecordPaymentExactBalance() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	// Paying exactly the outstanding balance is not an overpayment
	_, balance, err := ledger.RecordPayment(student.ID, decimal.NewFromInt(2500), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)
	suite.Assert().True(balance.IsZero(), "Balance is %s, should be 0", balance)

	suite.assertBalance(student.ID, decimal.Zero)
}

func (suite *TestSuiteStandard) TestRecordPaymentOverpayment() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(2501), models.PaymentMethodManual, "", "")
	suite.Assert().ErrorIs(err, models.ErrOverpayment)

	suite.assertBalance(student.ID, decimal.NewFromInt(2500))
}

func (suite *TestSuiteStandard) TestRecordPaymentNotPositive() {
	student := suite.createTestStudent(models.User{})

	_, _, err := ledger.RecordPayment(student.ID, decimal.Zero, models.PaymentMethodManual, "", "")
	suite.Assert().ErrorIs(err, models.ErrPaymentAmountNotPositive)
}

func (suite *TestSuiteStandard) TestRecordPaymentBankTransferPending() {
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	payment, balance, err := ledger.RecordPayment(student.ID, decimal.NewFromInt(2500), models.PaymentMethodBankTransfer, "TRX-1", "")
	suite.Require().Nil(err)

	suite.Assert().Equal(models.PaymentPending, payment.Status)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(2500)), "Balance is %s, should be unchanged at 2500", balance)

	suite.assertBalance(student.ID, decimal.NewFromInt(2500))

	var notifications []models.Notification
	suite.Require().Nil(models.DB.Where("student_id = ? AND type = ?", student.ID, models.NotificationPaymentPending).Find(&notifications).Error)
	suite.Assert().Len(notifications, 1)
}

func (suite *TestSuiteStandard) TestRecordExternalPayment() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	payment, balance, err := ledger.RecordExternalPayment(admin.ID, student.ID, decimal.NewFromInt(1000), models.PaymentMethodManual, "RCPT-7", "cash desk")
	suite.Require().Nil(err)

	suite.Assert().Equal(models.PaymentReceived, payment.Status)
	suite.Assert().Equal(&admin.ID, payment.RecordedByID)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(1500)), "Balance is %s, should be 1500", balance)

	var actions []models.ActionLog
	suite.Require().Nil(models.DB.Where("student_id = ? AND type = ?", student.ID, models.ActionPaymentRecorded).Find(&actions).Error)
	suite.Require().Len(actions, 1)
	suite.Assert().Equal(admin.ID, actions[0].PerformedByID)
}

func (suite *TestSuiteStandard) TestRecordExternalPaymentClamps() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(100))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	// External payments have no overpayment check, the balance clamps at zero
	_, balance, err := ledger.RecordExternalPayment(admin.ID, student.ID, decimal.NewFromInt(500), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)
	suite.Assert().True(balance.IsZero(), "Balance is %s, should be 0", balance)

	student, err = models.Student(models.DB, student.ID)
	suite.Require().Nil(err)
	suite.Assert().True(student.DuesBalance.IsZero())
}

func (suite *TestSuiteStandard) TestRecordExternalPaymentRequiresAdmin() {
	student := suite.createTestStudent(models.User{})
	other := suite.createTestStudent(models.User{})

	_, _, err := ledger.RecordExternalPayment(other.ID, student.ID, decimal.NewFromInt(100), models.PaymentMethodManual, "", "")
	suite.Assert().ErrorIs(err, models.ErrNoAdmin)
}

func (suite *TestSuiteStandard) TestApplyPenalty() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})
	course := suite.createTestCourse(decimal.NewFromInt(2500))

	_, _, err := ledger.Enroll(student.ID, course.ID)
	suite.Require().Nil(err)

	penalty, balance, err := ledger.ApplyPenalty(admin.ID, student.ID, decimal.NewFromInt(150), "", "overdue")
	suite.Require().Nil(err)

	suite.Assert().Equal(models.PenaltyLateFee, penalty.Type)
	suite.Assert().True(balance.Equal(decimal.NewFromInt(2650)), "Balance is %s, should be 2650", balance)

	suite.assertBalance(student.ID, decimal.NewFromInt(2650))
}

// Penalties strictly increase the balance, applying one can never lower it.
func (suite *TestSuiteStandard) TestApplyPenaltyMonotonic() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})

	previous := decimal.Zero
	for i := 0; i < 5; i++ {
		_, balance, err := ledger.ApplyPenalty(admin.ID, student.ID, decimal.NewFromInt(50), "", "")
		suite.Require().Nil(err)
		suite.Assert().True(balance.GreaterThan(previous), "Balance %s did not grow beyond %s", balance, previous)
		previous = balance
	}

	suite.assertBalance(student.ID, decimal.NewFromInt(250))
}

func (suite *TestSuiteStandard) TestApplyPenaltyNotPositive() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})

	_, _, err := ledger.ApplyPenalty(admin.ID, student.ID, decimal.NewFromInt(-5), "", "")
	suite.Assert().ErrorIs(err, models.ErrPenaltyAmountNotPositive)
}

func (suite *TestSuiteStandard) TestBlockUnblock() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})

	err := ledger.Block(admin.ID, student.ID, "unpaid dues")
	suite.Require().Nil(err)

	blocked, err := models.Student(models.DB, student.ID)
	suite.Require().Nil(err)
	suite.Assert().True(blocked.IsBlocked)
	suite.Assert().Equal("unpaid dues", blocked.BlockedReason)
	suite.Assert().NotNil(blocked.BlockedAt)

	err = ledger.Unblock(admin.ID, student.ID)
	suite.Require().Nil(err)

	unblocked, err := models.Student(models.DB, student.ID)
	suite.Require().Nil(err)
	suite.Assert().False(unblocked.IsBlocked)
	suite.Assert().Equal("", unblocked.BlockedReason)
	suite.Assert().Nil(unblocked.BlockedAt)

	var actions []models.ActionLog
	suite.Require().Nil(models.DB.Where("student_id = ?", student.ID).Order("created_at ASC").Find(&actions).Error)
	suite.Require().Len(actions, 2)
	suite.Assert().Equal(models.ActionBlocked, actions[0].Type)
	suite.Assert().Equal(models.ActionUnblocked, actions[1].Type)
}

func (suite *TestSuiteStandard) TestContact() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})

	err := ledger.Contact(admin.ID, student.ID, "email", "second reminder")
	suite.Require().Nil(err)

	var notifications []models.Notification
	suite.Require().Nil(models.DB.Where("student_id = ? AND type = ?", student.ID, models.NotificationContactRequest).Find(&notifications).Error)
	suite.Assert().Len(notifications, 1)

	var actions []models.ActionLog
	suite.Require().Nil(models.DB.Where("student_id = ? AND type = ?", student.ID, models.ActionContactRequest).Find(&actions).Error)
	suite.Assert().Len(actions, 1)
}

// Lifecycle test: two enrollments, a penalty, a partial and a settling
// payment, verifying the balance recomputation after every step.
func (suite *TestSuiteStandard) TestBalanceLifecycle() {
	admin := suite.createTestAdmin()
	student := suite.createTestStudent(models.User{})
	first := suite.createTestCourse(decimal.NewFromInt(2000))
	second := suite.createTestCourse(decimal.NewFromInt(1500))

	_, _, err := ledger.Enroll(student.ID, first.ID)
	suite.Require().Nil(err)
	suite.assertBalance(student.ID, decimal.NewFromInt(2000))

	_, _, err = ledger.Enroll(student.ID, second.ID)
	suite.Require().Nil(err)
	suite.assertBalance(student.ID, decimal.NewFromInt(3500))

	_, _, err = ledger.ApplyPenalty(admin.ID, student.ID, decimal.NewFromInt(500), "", "")
	suite.Require().Nil(err)
	suite.assertBalance(student.ID, decimal.NewFromInt(4000))

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(1500), models.PaymentMethodOnline, "", "")
	suite.Require().Nil(err)
	suite.assertBalance(student.ID, decimal.NewFromInt(2500))

	_, _, err = ledger.RecordPayment(student.ID, decimal.NewFromInt(2500), models.PaymentMethodManual, "", "")
	suite.Require().Nil(err)
	suite.assertBalance(student.ID, decimal.Zero)
}

func (suite *TestSuiteStandard) TestOperationsRequireExistingStudent() {
	admin := suite.createTestAdmin()

	_, _, err := ledger.ApplyPenalty(admin.ID, uuid.New(), decimal.NewFromInt(100), "", "")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	err = ledger.Block(admin.ID, uuid.New(), "reason")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}
