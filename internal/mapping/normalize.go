// Package mapping decides, for each spreadsheet column, which canonical
// roster field (if any) it represents. Recognition runs in three layers: an
// exact dictionary of normalized aliases, ordered substring heuristics, and a
// positional default for headerless files.
package mapping

import (
	"strings"

	"school-roster-service/internal/models"
)

// Normalize canonicalizes a header cell for lookup: trim, lowercase, and
// strip every run of whitespace, underscores and hyphens. Idempotent.
func Normalize(header string) string {
	var b strings.Builder
	for _, ch := range strings.ToLower(strings.TrimSpace(header)) {
		switch ch {
		case ' ', '\t', '\n', '\r', '_', '-', '.':
			// collapsed to nothing
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// exactAliases maps normalized header spellings to canonical field names.
// Static for process lifetime; never mutated.
var exactAliases = map[string]string{
	// name
	"name":          models.FieldName,
	"studentname":   models.FieldName,
	"fullname":      models.FieldName,
	"nameofstudent": models.FieldName,
	"candidatename": models.FieldName,
	"student":       models.FieldName,

	// mobile
	"mobile":        models.FieldMobile,
	"mobileno":      models.FieldMobile,
	"mobilenumber":  models.FieldMobile,
	"phone":         models.FieldMobile,
	"phoneno":       models.FieldMobile,
	"phonenumber":   models.FieldMobile,
	"contact":       models.FieldMobile,
	"contactno":     models.FieldMobile,
	"contactnumber": models.FieldMobile,
	"whatsapp":      models.FieldMobile,
	"whatsappno":    models.FieldMobile,

	// gender
	"gender": models.FieldGender,
	"sex":    models.FieldGender,

	// dob
	"dob":         models.FieldDOB,
	"dateofbirth": models.FieldDOB,
	"birthdate":   models.FieldDOB,
	"birthday":    models.FieldDOB,

	// admission date
	"admissiondate":   models.FieldAdmissionDate,
	"dateofadmission": models.FieldAdmissionDate,
	"admittedon":      models.FieldAdmissionDate,
	"doa":             models.FieldAdmissionDate,
	"joiningdate":     models.FieldAdmissionDate,
	"dateofjoining":   models.FieldAdmissionDate,

	// batch
	"batch":           models.FieldBatchCode,
	"batchcode":       models.FieldBatchCode,
	"batchyear":       models.FieldBatchCode,
	"session":         models.FieldBatchCode,
	"academicyear":    models.FieldBatchCode,
	"academicsession": models.FieldBatchCode,

	// roll
	"roll":       models.FieldRoll,
	"rollno":     models.FieldRoll,
	"rollnumber": models.FieldRoll,
	"classroll":  models.FieldRoll,

	// section
	"section":  models.FieldSection,
	"sec":      models.FieldSection,
	"division": models.FieldSection,
	"div":      models.FieldSection,

	// course
	"course":     models.FieldCourse,
	"coursename": models.FieldCourse,
	"program":    models.FieldCourse,
	"programme":  models.FieldCourse,
	"stream":     models.FieldCourse,

	// grade / class level
	"class":    models.FieldGrade,
	"grade":    models.FieldGrade,
	"std":      models.FieldGrade,
	"standard": models.FieldGrade,

	// course id
	"courseid":   models.FieldCourseID,
	"coursecode": models.FieldCourseID,

	// email
	"email":        models.FieldEmail,
	"emailid":      models.FieldEmail,
	"emailaddress": models.FieldEmail,
	"mail":         models.FieldEmail,
	"studentemail": models.FieldEmail,

	// address
	"address":            models.FieldAddress,
	"currentaddress":     models.FieldAddress,
	"residentialaddress": models.FieldAddress,
	"localaddress":       models.FieldAddress,
	"permanentaddress":   models.FieldPermanentAddress,
	"permaddress":        models.FieldPermanentAddress,

	// pincode
	"pincode":    models.FieldPincode,
	"pin":        models.FieldPincode,
	"zip":        models.FieldPincode,
	"zipcode":    models.FieldPincode,
	"postalcode": models.FieldPincode,
	"postcode":   models.FieldPincode,

	// serial
	"serialno": models.FieldSerialNo,
	"slno":     models.FieldSerialNo,
	"srno":     models.FieldSerialNo,
	"sno":      models.FieldSerialNo,
	"serial":   models.FieldSerialNo,

	// form
	"formno":        models.FieldFormNo,
	"formnumber":    models.FieldFormNo,
	"applicationno": models.FieldFormNo,

	// enrollment
	"enrollmentno":     models.FieldEnrollmentNo,
	"enrollmentnumber": models.FieldEnrollmentNo,
	"admissionno":      models.FieldEnrollmentNo,
	"registrationno":   models.FieldEnrollmentNo,
	"regno":            models.FieldEnrollmentNo,

	// guardian
	"guardian":           models.FieldGuardianName,
	"guardianname":       models.FieldGuardianName,
	"father":             models.FieldGuardianName,
	"fathername":         models.FieldGuardianName,
	"mother":             models.FieldGuardianName,
	"mothername":         models.FieldGuardianName,
	"parent":             models.FieldGuardianName,
	"parentname":         models.FieldGuardianName,
	"guardianphone":      models.FieldGuardianPhone,
	"guardianmobile":     models.FieldGuardianPhone,
	"guardiancontact":    models.FieldGuardianPhone,
	"parentphone":        models.FieldGuardianPhone,
	"parentmobile":       models.FieldGuardianPhone,
	"fatherphone":        models.FieldGuardianPhone,
	"fathermobile":       models.FieldGuardianPhone,
	"guardianemail":      models.FieldGuardianEmail,
	"guardianmail":       models.FieldGuardianEmail,
	"parentemail":        models.FieldGuardianEmail,
	"fatheremail":        models.FieldGuardianEmail,
	"guardianloginemail": models.FieldGuardianEmail,
	"parentloginemail":   models.FieldGuardianEmail,

	// misc
	"bloodgroup":  models.FieldBloodGroup,
	"blood":       models.FieldBloodGroup,
	"nationality": models.FieldNationality,
	"religion":    models.FieldReligion,
	"category":    models.FieldCategory,
	"caste":       models.FieldCategory,
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// heuristicField applies the ordered substring rules to a normalized header.
// First match wins; the guardian block runs before the generic rules because
// a qualified guardian header ("guardian login email") would otherwise be
// captured by the bare name/phone/email rules.
func heuristicField(h string) (string, bool) {
	if h == "" {
		return "", false
	}

	if containsAny(h, "guardian", "parent", "father", "mother") {
		switch {
		case strings.Contains(h, "email"):
			return models.FieldGuardianEmail, true
		case containsAny(h, "phone", "mobile", "contact", "whatsapp"):
			return models.FieldGuardianPhone, true
		default:
			return models.FieldGuardianName, true
		}
	}

	switch {
	case containsAny(h, "name", "student"):
		return models.FieldName, true
	case containsAny(h, "phone", "mobile", "contact", "whatsapp"):
		return models.FieldMobile, true
	case strings.Contains(h, "email"):
		return models.FieldEmail, true
	case containsAny(h, "gender", "sex"):
		return models.FieldGender, true
	case containsAny(h, "dob", "birth"):
		return models.FieldDOB, true
	case strings.Contains(h, "admission") && strings.Contains(h, "date"):
		return models.FieldAdmissionDate, true
	case containsAny(h, "batch", "session", "academicyear"):
		return models.FieldBatchCode, true
	case strings.Contains(h, "roll"):
		return models.FieldRoll, true
	case containsAny(h, "section", "division"):
		return models.FieldSection, true
	case containsAny(h, "course", "program", "stream"):
		return models.FieldCourse, true
	case containsAny(h, "class", "grade"):
		return models.FieldGrade, true
	// permanent+address is checked before bare address, which subsumes it
	case strings.Contains(h, "permanent") && strings.Contains(h, "address"):
		return models.FieldPermanentAddress, true
	case strings.Contains(h, "address"):
		return models.FieldAddress, true
	case containsAny(h, "pin", "zip", "postal"):
		return models.FieldPincode, true
	case strings.Contains(h, "serial"):
		return models.FieldSerialNo, true
	case strings.Contains(h, "form"):
		return models.FieldFormNo, true
	case containsAny(h, "enrollment", "enrolment", "registration"):
		return models.FieldEnrollmentNo, true
	case strings.Contains(h, "blood"):
		return models.FieldBloodGroup, true
	case strings.Contains(h, "nationality"):
		return models.FieldNationality, true
	case strings.Contains(h, "religion"):
		return models.FieldReligion, true
	case containsAny(h, "category", "caste"):
		return models.FieldCategory, true
	}

	return "", false
}

// LookupField resolves one header cell to a canonical field name: exact
// dictionary first, then the heuristic rules.
func LookupField(header string) (string, bool) {
	h := Normalize(header)
	if h == "" {
		return "", false
	}
	if field, ok := exactAliases[h]; ok {
		return field, true
	}
	return heuristicField(h)
}
