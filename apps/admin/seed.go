package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/trezcool/masomo-records/core/school"
	"github.com/trezcool/masomo-records/core/subject"
)

// fixture ids are kept as is, so references between documents can be written
// up front. With the mongo engine they must be ObjectID hex strings.
type (
	fixture struct {
		Classes  []school.Class   `yaml:"classes"`
		Subjects []fixtureSubject `yaml:"subjects"`
		Teachers []school.Teacher `yaml:"teachers"`
		Students []school.Student `yaml:"students"`
	}

	fixtureSubject struct {
		ID       string `yaml:"id"`
		Name     string `yaml:"name"`
		Code     string `yaml:"code"`
		Sessions string `yaml:"sessions"`
		Class    string `yaml:"class"`
		School   string `yaml:"school"`
		Teacher  string `yaml:"teacher"`
	}
)

func loadFixture(path string) (fixture, error) {
	var fx fixture
	data, err := os.ReadFile(path)
	if err != nil {
		return fx, errors.Wrap(err, "reading fixture")
	}
	if err = yaml.UnmarshalStrict(data, &fx); err != nil {
		return fx, errors.Wrapf(err, "parsing %s", path)
	}
	return fx, nil
}

func (cli *commandLine) seed(ctx context.Context, path string) error {
	fx, err := loadFixture(path)
	if err != nil {
		return err
	}
	schoolRepo, subRepo := cli.store.Repos.School, cli.store.Repos.Subject

	for _, class := range fx.Classes {
		if _, err = schoolRepo.CreateClass(ctx, class); err != nil {
			return errors.Wrapf(err, "seeding class %q", class.Name)
		}
	}
	if len(fx.Subjects) > 0 {
		subjects := make([]subject.Subject, 0, len(fx.Subjects))
		for _, sub := range fx.Subjects {
			subjects = append(subjects, subject.Subject{
				ID:        sub.ID,
				Name:      sub.Name,
				Code:      sub.Code,
				Sessions:  sub.Sessions,
				ClassID:   sub.Class,
				SchoolID:  sub.School,
				TeacherID: sub.Teacher,
			})
		}
		if _, err = subRepo.CreateSubjects(ctx, subjects...); err != nil {
			return errors.Wrap(err, "seeding subjects")
		}
	}
	for _, teacher := range fx.Teachers {
		if _, err = schoolRepo.CreateTeacher(ctx, teacher); err != nil {
			return errors.Wrapf(err, "seeding teacher %q", teacher.Name)
		}
	}
	for _, student := range fx.Students {
		if _, err = schoolRepo.CreateStudent(ctx, student); err != nil {
			return errors.Wrapf(err, "seeding student %q", student.Name)
		}
	}

	fmt.Fprintf(cli.out, "seeded %d class(es), %d subject(s), %d teacher(s), %d student(s)\n",
		len(fx.Classes), len(fx.Subjects), len(fx.Teachers), len(fx.Students))
	return nil
}
